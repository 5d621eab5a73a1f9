package repository

import (
	"mindconnect_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AppointmentRepository struct {
	DB *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{DB: db}
}

func (r *AppointmentRepository) Create(appt *model.Appointment) error {
	return r.DB.Create(appt).Error
}

func (r *AppointmentRepository) FindByID(id string) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.DB.First(&appt, "id = ?", id).Error
	return &appt, err
}

func (r *AppointmentRepository) FindByPatientID(patientID string) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.DB.Where("patient_id = ?", patientID).
		Order("appointment_datetime").
		Find(&appts).Error
	return appts, err
}

func (r *AppointmentRepository) FindByPsychologistID(psychologistID string) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.DB.Where("psychologist_id = ?", psychologistID).
		Order("appointment_datetime").
		Find(&appts).Error
	return appts, err
}

func (r *AppointmentRepository) Update(appt *model.Appointment) error {
	return r.DB.Save(appt).Error
}

// CountOverlapping counts non-cancelled appointments of a psychologist that
// overlap the [start, end) window.
func (r *AppointmentRepository) CountOverlapping(psychologistID string, start, end time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Appointment{}).
		Where("psychologist_id = ?", psychologistID).
		Where("status NOT IN ?", []model.AppointmentStatus{model.AppointmentCancelled, model.AppointmentNoShow}).
		Where("appointment_datetime < ? AND DATE_ADD(appointment_datetime, INTERVAL duration_minutes MINUTE) > ?", end, start).
		Count(&count).Error
	return count, err
}

func (r *AppointmentRepository) FindAvailability(psychologistID string) ([]model.PsychologistAvailability, error) {
	var slots []model.PsychologistAvailability
	err := r.DB.Where("psychologist_id = ? AND is_active = ?", psychologistID, true).
		Order("day_of_week, start_time").
		Find(&slots).Error
	return slots, err
}

func (r *AppointmentRepository) CreateAvailability(slot *model.PsychologistAvailability) error {
	return r.DB.Create(slot).Error
}

func (r *AppointmentRepository) DeleteAvailability(id, psychologistID string) error {
	return r.DB.Where("id = ? AND psychologist_id = ?", id, psychologistID).
		Delete(&model.PsychologistAvailability{}).Error
}

func (r *AppointmentRepository) CreateFeedback(fb *model.ConsultationFeedback) error {
	return r.DB.Create(fb).Error
}

func (r *AppointmentRepository) FindFeedbackByAppointmentID(appointmentID string) (*model.ConsultationFeedback, error) {
	var fb model.ConsultationFeedback
	err := r.DB.Where("appointment_id = ?", appointmentID).First(&fb).Error
	return &fb, err
}

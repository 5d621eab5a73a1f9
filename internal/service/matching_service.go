package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mindconnect_backend/internal/config"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/util"
	"mindconnect_backend/pkg/monitoring"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores consumed by the matching engine. The gorm repositories satisfy
// them; tests use in-memory fakes.
type SubmissionStore interface {
	FindByID(id string) (*model.QuestionnaireResponse, error)
}

type CandidateDirectory interface {
	FindVerifiedPsychologists(city string) ([]model.UserProfile, error)
}

type MatchStore interface {
	CreateBatch(matches []model.TherapyMatch) error
	FindByID(id string) (*model.TherapyMatch, error)
	FindBySubmissionID(submissionID string) ([]model.TherapyMatch, error)
	FindActiveByPatientID(patientID string) ([]model.TherapyMatch, error)
	FindByPsychologistID(psychologistID string) ([]model.TherapyMatch, error)
	UpdateStatus(id string, status model.MatchStatus) error
}

// therapyTypeSpecializations maps a therapy type to the specialization tags
// a candidate must overlap with. Unknown types map to an empty set, which
// disables specialization filtering.
var therapyTypeSpecializations = map[model.TherapyType][]string{
	model.TherapyIndividual: {
		"Terapia Cognitivo Comportamentale",
		"Disturbi d'Ansia",
		"Depressione",
		"Terapia Psicodinamica",
	},
	model.TherapyCouple: {
		"Terapia di Coppia",
		"Terapia Familiare",
		"Mediazione Familiare",
		"Consulenza di Coppia",
	},
	model.TherapyChild: {
		"Psicologia Infantile",
		"Neuropsicologia",
		"ADHD",
		"Disturbi dello Spettro Autistico",
		"Terapia Familiare",
	},
}

// Modality answers that signal at least part of the sessions happen in
// person, which restricts candidates to the patient's city.
var inPersonModalities = map[string]bool{
	"Solo in presenza":       true,
	"Entrambe le modalità":   true,
	"Non ho preferenze":      true,
	"Misto (presenza per bambino, online per genitori)": true,
}

var modalityKeys = []string{
	model.KeySessionModality,
	model.KeySessionModalityCouple,
	model.KeySessionModalityChild,
}

var genderPreferenceKeys = []string{
	model.KeyTherapistGender,
	model.KeyTherapistGenderCouple,
	model.KeyTherapistPrefsChild,
}

// Answers that do not count as a stated gender preference.
var noGenderPreference = map[string]bool{
	"Nessuna preferenza":           true,
	"Non ho preferenze":            true,
	"Nessuna preferenza di genere": true,
}

const (
	baseScore = 70
	maxScore  = 100
	// Cap on the cumulative specialization-overlap bonus.
	maxSpecializationBonus = 15
	maxReasons             = 4
	maxMatches             = 3
)

type MatchingService struct {
	Submissions SubmissionStore
	Directory   CandidateDirectory
	Matches     MatchStore
	Redis       *redis.Client
	CacheTTL    time.Duration
	Log         *zap.Logger
}

func NewMatchingService(subs SubmissionStore, dir CandidateDirectory, matches MatchStore, rdb *redis.Client, cfg *config.Config, log *zap.Logger) *MatchingService {
	return &MatchingService{
		Submissions: subs,
		Directory:   dir,
		Matches:     matches,
		Redis:       rdb,
		CacheTTL:    time.Duration(cfg.Matching.CacheTTLMinutes) * time.Minute,
		Log:         log,
	}
}

// RequiresInPersonTherapy reports whether the submission's modality answer
// asks for in-person sessions. The first present modality key decides;
// absent modality answers never trigger geographic filtering.
func RequiresInPersonTherapy(responses model.ResponseMap) bool {
	choice, present := responses.FirstChoice(modalityKeys...)
	if !present {
		return false
	}
	return inPersonModalities[choice]
}

// statedGenderPreference returns the patient's therapist-gender answer and
// whether it counts as an actual preference.
func statedGenderPreference(responses model.ResponseMap) (string, bool) {
	choice, present := responses.FirstChoice(genderPreferenceKeys...)
	if !present || choice == "" {
		return "", false
	}
	return choice, !noGenderPreference[choice]
}

// matchingSpecializations returns the candidate tags that overlap the
// required set. A tag overlaps when it appears, case-insensitively, inside
// one of the required tags, so "ADHD" also matches profiles declaring
// "adhd" and partial phrasings survive.
func matchingSpecializations(specs model.StringList, required []string) []string {
	var matched []string
	for _, spec := range specs {
		lowered := strings.ToLower(spec)
		for _, req := range required {
			if strings.Contains(strings.ToLower(req), lowered) {
				matched = append(matched, spec)
				break
			}
		}
	}
	return matched
}

// FilterCandidates selects verified psychologists compatible with the
// submission: specialization overlap with the therapy type's tag set, and,
// when the modality answer requires presence, the same city. An empty
// result is a valid outcome, not an error.
func (s *MatchingService) FilterCandidates(sub *model.QuestionnaireResponse) ([]model.UserProfile, error) {
	city := ""
	if sub.LocationCity != "" && RequiresInPersonTherapy(sub.Responses) {
		city = sub.LocationCity
	}

	profiles, err := s.Directory.FindVerifiedPsychologists(city)
	if err != nil {
		return nil, err
	}

	required := therapyTypeSpecializations[sub.TherapyType]
	if len(required) == 0 {
		return profiles, nil
	}

	candidates := make([]model.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if len(matchingSpecializations(p.Specializations, required)) > 0 {
			candidates = append(candidates, p)
		}
	}
	return candidates, nil
}

// CompatibilityScore computes the additive heuristic of the candidate for
// this submission, clamped to [70,100]. It is deterministic and reads
// nothing but its arguments.
func (s *MatchingService) CompatibilityScore(sub *model.QuestionnaireResponse, p *model.UserProfile) int {
	score := baseScore

	if p.YearsOfExperience >= 5 {
		score += 10
	}
	if p.YearsOfExperience >= 10 {
		score += 5
	}

	if p.Rating >= 4.5 {
		score += 8
	} else if p.Rating >= 4.0 {
		score += 5
	}

	required := therapyTypeSpecializations[sub.TherapyType]
	specBonus := len(matchingSpecializations(p.Specializations, required)) * 5
	if specBonus > maxSpecializationBonus {
		specBonus = maxSpecializationBonus
	}
	score += specBonus

	if _, stated := statedGenderPreference(sub.Responses); stated {
		score += 5
	}

	if sub.Responses.Has(model.KeyTherapyApproach) {
		score += 10
	}

	if sub.LocationCity != "" && p.LocationCity == sub.LocationCity {
		score += 8
	}

	if score > maxScore {
		score = maxScore
	}
	if score < baseScore {
		score = baseScore
	}
	return score
}

// MatchReasons derives up to four human-readable justifications from the
// same signals the scorer uses, in fixed priority order.
func (s *MatchingService) MatchReasons(sub *model.QuestionnaireResponse, p *model.UserProfile) []string {
	reasons := make([]string, 0, maxReasons)

	required := therapyTypeSpecializations[sub.TherapyType]
	if specs := matchingSpecializations(p.Specializations, required); len(specs) > 0 {
		reasons = append(reasons, "Specializzato nelle tue aree di interesse: "+strings.Join(specs, ", "))
	}

	if p.YearsOfExperience >= 10 {
		reasons = append(reasons, fmt.Sprintf("Oltre %d anni di esperienza clinica", p.YearsOfExperience))
	} else if p.YearsOfExperience >= 5 {
		reasons = append(reasons, fmt.Sprintf("%d anni di esperienza nel settore", p.YearsOfExperience))
	}

	if p.Rating >= 4.5 {
		reasons = append(reasons, fmt.Sprintf("Valutazione eccellente: %.1f/5 (%d recensioni)", p.Rating, p.ReviewCount))
	}

	if sub.Responses.Has(model.KeyTherapyApproach) {
		reasons = append(reasons, "Approccio terapeutico compatibile con le tue preferenze")
	}

	if sub.LocationCity != "" && p.LocationCity == sub.LocationCity {
		reasons = append(reasons, "Disponibile nella tua zona per sessioni in presenza")
	}

	if p.Languages.Contains("Italiano") {
		reasons = append(reasons, "Parla fluentemente italiano")
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return reasons
}

// GenerateMatches builds and persists the top-3 match set for a submission.
// The call is idempotent: if matches already exist for the submission the
// original set is returned unchanged. Zero candidates yields an empty set,
// not an error.
func (s *MatchingService) GenerateMatches(patientID, submissionID string) ([]model.TherapyMatch, error) {
	sub, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}

	if sub.TherapyType == "" || len(sub.Responses) == 0 {
		return nil, util.ErrInvalidSubmission
	}

	existing, err := s.Matches.FindBySubmissionID(submissionID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		monitoring.MatchesGenerated.WithLabelValues("skipped").Inc()
		return existing, nil
	}

	candidates, err := s.FilterCandidates(sub)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		monitoring.MatchesGenerated.WithLabelValues("empty").Inc()
		return []model.TherapyMatch{}, nil
	}

	// Evaluate candidates in filter-return order. A defective profile is
	// skipped and logged, never aborting the batch.
	matches := make([]model.TherapyMatch, 0, maxMatches)
	for i := range candidates {
		if len(matches) == maxMatches {
			break
		}
		p := &candidates[i]
		if p.UserID == "" {
			s.Log.Warn("skipping candidate with malformed profile",
				zap.String("profile_id", p.ID),
				zap.String("submission_id", submissionID))
			continue
		}
		matches = append(matches, model.TherapyMatch{
			PatientID:               patientID,
			PsychologistID:          p.UserID,
			QuestionnaireResponseID: submissionID,
			CompatibilityScore:      s.CompatibilityScore(sub, p),
			ReasonsForMatch:         s.MatchReasons(sub, p),
			Status:                  model.MatchActive,
		})
	}
	if len(matches) == 0 {
		monitoring.MatchesGenerated.WithLabelValues("empty").Inc()
		return []model.TherapyMatch{}, nil
	}

	// Rank by descending score; equal scores keep candidate discovery order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CompatibilityScore > matches[j].CompatibilityScore
	})
	for i := range matches {
		matches[i].MatchRank = i + 1
	}

	if err := s.Matches.CreateBatch(matches); err != nil {
		monitoring.MatchesGenerated.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("persisting match batch: %w", err)
	}
	monitoring.MatchesGenerated.WithLabelValues("created").Inc()

	s.invalidateCache(patientID)
	return matches, nil
}

// GenerateMatchesAsync runs GenerateMatches on a detached goroutine. The
// HTTP request that triggered generation never waits on it; failures are
// logged and surface to the patient as an empty match list.
func (s *MatchingService) GenerateMatchesAsync(patientID, submissionID string) {
	go func() {
		if _, err := s.GenerateMatches(patientID, submissionID); err != nil {
			s.Log.Error("background match generation failed",
				zap.String("patient_id", patientID),
				zap.String("submission_id", submissionID),
				zap.Error(err))
		}
	}()
}

func (s *MatchingService) cacheKey(patientID string) string {
	return "matches:active:" + patientID
}

// GetPatientMatches returns the patient's active matches ordered by rank,
// served from the redis cache when warm.
func (s *MatchingService) GetPatientMatches(patientID string) ([]model.TherapyMatch, error) {
	ctx := context.Background()

	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, s.cacheKey(patientID)).Result(); err == nil {
			var cached []model.TherapyMatch
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	matches, err := s.Matches.FindActiveByPatientID(patientID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(matches); err == nil {
			s.Redis.Set(ctx, s.cacheKey(patientID), raw, s.CacheTTL)
		}
	}
	return matches, nil
}

// GetPsychologistMatches lists the matches where the caller is the
// proposed psychologist, newest first. Not cached; psychologists consult
// this far less often than patients poll theirs.
func (s *MatchingService) GetPsychologistMatches(psychologistID string) ([]model.TherapyMatch, error) {
	return s.Matches.FindByPsychologistID(psychologistID)
}

func (s *MatchingService) invalidateCache(patientID string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), s.cacheKey(patientID))
}

// UpdateMatchStatus applies a patient-requested status transition after an
// ownership and state-machine check.
func (s *MatchingService) UpdateMatchStatus(matchID, patientID string, to model.MatchStatus) (*model.TherapyMatch, error) {
	match, err := s.Matches.FindByID(matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrMatchNotFound
		}
		return nil, err
	}
	if match.PatientID != patientID {
		return nil, util.ErrPermissionDenied
	}
	return s.transition(match, to)
}

// TransitionMatch applies a transition on behalf of internal flows
// (booking, consultation completion) that already authorized the actor.
func (s *MatchingService) TransitionMatch(matchID string, to model.MatchStatus) (*model.TherapyMatch, error) {
	match, err := s.Matches.FindByID(matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrMatchNotFound
		}
		return nil, err
	}
	return s.transition(match, to)
}

func (s *MatchingService) transition(match *model.TherapyMatch, to model.MatchStatus) (*model.TherapyMatch, error) {
	if !match.Status.CanTransitionTo(to) {
		return nil, util.ErrInvalidMatchStatus
	}
	if err := s.Matches.UpdateStatus(match.ID, to); err != nil {
		return nil, fmt.Errorf("updating match status: %w", err)
	}
	match.Status = to
	s.invalidateCache(match.PatientID)
	return match, nil
}

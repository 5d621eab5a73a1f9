package service

import (
	"errors"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/util"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ---------- fakes ----------

type fakeSubmissions struct {
	byID map[string]*model.QuestionnaireResponse
}

func (f *fakeSubmissions) FindByID(id string) (*model.QuestionnaireResponse, error) {
	sub, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

type fakeDirectory struct {
	profiles []model.UserProfile
	lastCity string
}

func (f *fakeDirectory) FindVerifiedPsychologists(city string) ([]model.UserProfile, error) {
	f.lastCity = city
	if city == "" {
		return f.profiles, nil
	}
	var out []model.UserProfile
	for _, p := range f.profiles {
		if p.LocationCity == city {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeMatches struct {
	bySubmission map[string][]model.TherapyMatch
	createCalls  int
}

func (f *fakeMatches) CreateBatch(matches []model.TherapyMatch) error {
	f.createCalls++
	if f.bySubmission == nil {
		f.bySubmission = map[string][]model.TherapyMatch{}
	}
	for i := range matches {
		matches[i].ID = model.GenerateUUID()
	}
	f.bySubmission[matches[0].QuestionnaireResponseID] = matches
	return nil
}

func (f *fakeMatches) FindByID(id string) (*model.TherapyMatch, error) {
	for _, batch := range f.bySubmission {
		for i := range batch {
			if batch[i].ID == id {
				return &batch[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMatches) FindBySubmissionID(submissionID string) ([]model.TherapyMatch, error) {
	return f.bySubmission[submissionID], nil
}

func (f *fakeMatches) FindActiveByPatientID(patientID string) ([]model.TherapyMatch, error) {
	var out []model.TherapyMatch
	for _, batch := range f.bySubmission {
		for _, m := range batch {
			if m.PatientID == patientID && m.Status == model.MatchActive {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (f *fakeMatches) FindByPsychologistID(psychologistID string) ([]model.TherapyMatch, error) {
	var out []model.TherapyMatch
	for _, batch := range f.bySubmission {
		for _, m := range batch {
			if m.PsychologistID == psychologistID {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (f *fakeMatches) UpdateStatus(id string, status model.MatchStatus) error {
	for _, batch := range f.bySubmission {
		for i := range batch {
			if batch[i].ID == id {
				batch[i].Status = status
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func newTestService(subs *fakeSubmissions, dir *fakeDirectory, matches *fakeMatches) *MatchingService {
	return &MatchingService{
		Submissions: subs,
		Directory:   dir,
		Matches:     matches,
		CacheTTL:    time.Minute,
		Log:         zap.NewNop(),
	}
}

func individualSubmission() *model.QuestionnaireResponse {
	return &model.QuestionnaireResponse{
		UUIDBase:    model.UUIDBase{ID: "sub-1"},
		TherapyType: model.TherapyIndividual,
		Responses: model.ResponseMap{
			model.KeySessionModality: model.SingleChoice("Solo online"),
		},
	}
}

// ---------- scoring ----------

func TestCompatibilityScoreClampedToRange(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	sub := &model.QuestionnaireResponse{
		TherapyType:  model.TherapyIndividual,
		LocationCity: "Milano",
		Responses: model.ResponseMap{
			model.KeyTherapistGender: model.SingleChoice("Donna"),
			model.KeyTherapyApproach: model.SingleChoice("Cognitivo comportamentale"),
		},
	}

	// Every bonus fires: 70+10+5+8+15+5+10+8 overshoots the cap.
	best := &model.UserProfile{
		YearsOfExperience: 12,
		Rating:            4.8,
		Specializations:   model.StringList{"Depressione", "Terapia Cognitivo Comportamentale", "Disturbi d'Ansia"},
		LocationCity:      "Milano",
	}
	if got := svc.CompatibilityScore(sub, best); got != 100 {
		t.Fatalf("best candidate score = %d, want 100", got)
	}

	// No bonus fires: the base score is also the floor.
	worst := &model.UserProfile{}
	bare := &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{}}
	if got := svc.CompatibilityScore(bare, worst); got != 70 {
		t.Fatalf("bare candidate score = %d, want 70", got)
	}
}

func TestCompatibilityScoreAdditiveTable(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	tests := []struct {
		name string
		sub  *model.QuestionnaireResponse
		prof model.UserProfile
		want int
	}{
		{
			name: "five years of experience",
			sub:  &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{}},
			prof: model.UserProfile{YearsOfExperience: 5},
			want: 80,
		},
		{
			name: "ten years stacks both experience bonuses",
			sub:  &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{}},
			prof: model.UserProfile{YearsOfExperience: 10},
			want: 85,
		},
		{
			name: "good but not excellent rating",
			sub:  &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{}},
			prof: model.UserProfile{Rating: 4.2},
			want: 75,
		},
		{
			name: "excellent rating",
			sub:  &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{}},
			prof: model.UserProfile{Rating: 4.5},
			want: 78,
		},
		{
			name: "specialization bonus capped at three overlaps",
			sub:  &model.QuestionnaireResponse{TherapyType: model.TherapyChild, Responses: model.ResponseMap{}},
			prof: model.UserProfile{Specializations: model.StringList{
				"Psicologia Infantile", "Neuropsicologia", "ADHD", "Terapia Familiare",
			}},
			want: 85,
		},
		{
			name: "no-preference gender answer earns nothing",
			sub: &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{
				model.KeyTherapistGender: model.SingleChoice("Nessuna preferenza"),
			}},
			prof: model.UserProfile{},
			want: 70,
		},
		{
			name: "stated gender preference",
			sub: &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{
				model.KeyTherapistGender: model.SingleChoice("Uomo"),
			}},
			prof: model.UserProfile{},
			want: 75,
		},
		{
			name: "therapy approach answered",
			sub: &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{
				model.KeyTherapyApproach: model.SingleChoice("Psicodinamico"),
			}},
			prof: model.UserProfile{},
			want: 80,
		},
		{
			name: "same city",
			sub: &model.QuestionnaireResponse{
				TherapyType:  model.TherapyIndividual,
				LocationCity: "Roma",
				Responses:    model.ResponseMap{},
			},
			prof: model.UserProfile{LocationCity: "Roma"},
			want: 78,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.CompatibilityScore(tt.sub, &tt.prof); got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompatibilityScoreDeterministic(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	sub := individualSubmission()
	prof := &model.UserProfile{YearsOfExperience: 7, Rating: 4.6, Specializations: model.StringList{"Depressione"}}

	first := svc.CompatibilityScore(sub, prof)
	for i := 0; i < 10; i++ {
		if got := svc.CompatibilityScore(sub, prof); got != first {
			t.Fatalf("score changed between runs: %d then %d", first, got)
		}
	}
}

// ---------- reasons ----------

func TestMatchReasonsPriorityAndCap(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	sub := &model.QuestionnaireResponse{
		TherapyType:  model.TherapyIndividual,
		LocationCity: "Torino",
		Responses: model.ResponseMap{
			model.KeyTherapyApproach: model.SingleChoice("Cognitivo comportamentale"),
		},
	}
	prof := &model.UserProfile{
		YearsOfExperience: 11,
		Rating:            4.9,
		ReviewCount:       40,
		Specializations:   model.StringList{"Depressione"},
		Languages:         model.StringList{"Italiano", "Inglese"},
		LocationCity:      "Torino",
	}

	reasons := svc.MatchReasons(sub, prof)
	if len(reasons) != 4 {
		t.Fatalf("got %d reasons, want 4: %v", len(reasons), reasons)
	}
	if reasons[0] != "Specializzato nelle tue aree di interesse: Depressione" {
		t.Errorf("specialization reason must come first, got %q", reasons[0])
	}
}

func TestMatchReasonsOnlyEarnedSignals(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	sub := &model.QuestionnaireResponse{TherapyType: model.TherapyIndividual, Responses: model.ResponseMap{}}
	prof := &model.UserProfile{YearsOfExperience: 3, Rating: 3.9}

	if reasons := svc.MatchReasons(sub, prof); len(reasons) != 0 {
		t.Fatalf("unearned reasons returned: %v", reasons)
	}
}

// ---------- filtering ----------

func TestFilterCandidatesSpecializationOverlap(t *testing.T) {
	dir := &fakeDirectory{profiles: []model.UserProfile{
		{UserID: "psy-1", Specializations: model.StringList{"Depressione"}},
		{UserID: "psy-2", Specializations: model.StringList{"Psicologia Infantile"}},
		{UserID: "psy-3", Specializations: model.StringList{"adhd"}},
	}}
	svc := newTestService(nil, dir, nil)

	got, err := svc.FilterCandidates(individualSubmission())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].UserID != "psy-1" {
		t.Fatalf("individual therapy candidates = %v, want only psy-1", got)
	}

	// Overlap is case-insensitive: a lowercase tag still matches.
	child := &model.QuestionnaireResponse{TherapyType: model.TherapyChild, Responses: model.ResponseMap{}}
	got, err = svc.FilterCandidates(child)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("child therapy candidates = %d, want 2 (psy-2, psy-3)", len(got))
	}
}

func TestFilterCandidatesGeographyGatedByModality(t *testing.T) {
	dir := &fakeDirectory{profiles: []model.UserProfile{
		{UserID: "psy-mi", LocationCity: "Milano", Specializations: model.StringList{"Depressione"}},
		{UserID: "psy-rm", LocationCity: "Roma", Specializations: model.StringList{"Depressione"}},
	}}
	svc := newTestService(nil, dir, nil)

	sub := &model.QuestionnaireResponse{
		TherapyType:  model.TherapyIndividual,
		LocationCity: "Milano",
		Responses: model.ResponseMap{
			model.KeySessionModality: model.SingleChoice("Solo in presenza"),
		},
	}

	got, err := svc.FilterCandidates(sub)
	if err != nil {
		t.Fatal(err)
	}
	if dir.lastCity != "Milano" {
		t.Errorf("in-person submission must filter by city, directory got %q", dir.lastCity)
	}
	if len(got) != 1 || got[0].UserID != "psy-mi" {
		t.Fatalf("candidates = %v, want only psy-mi", got)
	}

	// Online modality ignores the patient's city entirely.
	sub.Responses[model.KeySessionModality] = model.SingleChoice("Solo online")
	got, err = svc.FilterCandidates(sub)
	if err != nil {
		t.Fatal(err)
	}
	if dir.lastCity != "" {
		t.Errorf("online submission must not filter by city, directory got %q", dir.lastCity)
	}
	if len(got) != 2 {
		t.Fatalf("online candidates = %d, want 2", len(got))
	}
}

func TestRequiresInPersonTherapy(t *testing.T) {
	tests := []struct {
		name      string
		responses model.ResponseMap
		want      bool
	}{
		{"absent modality", model.ResponseMap{}, false},
		{"online only", model.ResponseMap{model.KeySessionModality: model.SingleChoice("Solo online")}, false},
		{"in person only", model.ResponseMap{model.KeySessionModality: model.SingleChoice("Solo in presenza")}, true},
		{"both modalities", model.ResponseMap{model.KeySessionModality: model.SingleChoice("Entrambe le modalità")}, true},
		{"no preference counts as in person", model.ResponseMap{model.KeySessionModality: model.SingleChoice("Non ho preferenze")}, true},
		{"child mixed modality", model.ResponseMap{model.KeySessionModalityChild: model.SingleChoice("Misto (presenza per bambino, online per genitori)")}, true},
		{"first present key decides", model.ResponseMap{
			model.KeySessionModality:       model.SingleChoice("Solo online"),
			model.KeySessionModalityCouple: model.SingleChoice("Solo in presenza"),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiresInPersonTherapy(tt.responses); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------- generation ----------

func TestGenerateMatchesRanksTopThree(t *testing.T) {
	sub := individualSubmission()
	subs := &fakeSubmissions{byID: map[string]*model.QuestionnaireResponse{"sub-1": sub}}
	dir := &fakeDirectory{profiles: []model.UserProfile{
		// Discovery order: low, high, mid, then one past the evaluation window.
		{UserID: "psy-low", Specializations: model.StringList{"Depressione"}},
		{UserID: "psy-high", Specializations: model.StringList{"Depressione"}, YearsOfExperience: 12, Rating: 4.8},
		{UserID: "psy-mid", Specializations: model.StringList{"Depressione"}, YearsOfExperience: 6},
		{UserID: "psy-late", Specializations: model.StringList{"Depressione"}, YearsOfExperience: 20, Rating: 5},
	}}
	matches := &fakeMatches{}
	svc := newTestService(subs, dir, matches)

	got, err := svc.GenerateMatches("pat-1", "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d matches, want 3", len(got))
	}

	wantOrder := []string{"psy-high", "psy-mid", "psy-low"}
	for i, want := range wantOrder {
		if got[i].PsychologistID != want {
			t.Errorf("rank %d: got %s, want %s", i+1, got[i].PsychologistID, want)
		}
		if got[i].MatchRank != i+1 {
			t.Errorf("rank field = %d, want %d", got[i].MatchRank, i+1)
		}
		if got[i].Status != model.MatchActive {
			t.Errorf("new match status = %s, want active", got[i].Status)
		}
	}

	// Only the first three discovered candidates are evaluated, however
	// strong a later one is.
	for _, m := range got {
		if m.PsychologistID == "psy-late" {
			t.Error("candidate beyond the evaluation window was ranked")
		}
	}

	if got[0].CompatibilityScore < got[1].CompatibilityScore || got[1].CompatibilityScore < got[2].CompatibilityScore {
		t.Errorf("scores not descending: %d, %d, %d",
			got[0].CompatibilityScore, got[1].CompatibilityScore, got[2].CompatibilityScore)
	}
}

func TestGenerateMatchesTieKeepsDiscoveryOrder(t *testing.T) {
	sub := individualSubmission()
	subs := &fakeSubmissions{byID: map[string]*model.QuestionnaireResponse{"sub-1": sub}}
	dir := &fakeDirectory{profiles: []model.UserProfile{
		{UserID: "psy-a", Specializations: model.StringList{"Depressione"}},
		{UserID: "psy-b", Specializations: model.StringList{"Depressione"}},
	}}
	svc := newTestService(subs, dir, &fakeMatches{})

	got, err := svc.GenerateMatches("pat-1", "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].PsychologistID != "psy-a" || got[1].PsychologistID != "psy-b" {
		t.Errorf("tied scores must keep discovery order, got %s then %s",
			got[0].PsychologistID, got[1].PsychologistID)
	}
}

func TestGenerateMatchesIdempotent(t *testing.T) {
	sub := individualSubmission()
	subs := &fakeSubmissions{byID: map[string]*model.QuestionnaireResponse{"sub-1": sub}}
	dir := &fakeDirectory{profiles: []model.UserProfile{
		{UserID: "psy-1", Specializations: model.StringList{"Depressione"}},
	}}
	matches := &fakeMatches{}
	svc := newTestService(subs, dir, matches)

	first, err := svc.GenerateMatches("pat-1", "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.GenerateMatches("pat-1", "sub-1")
	if err != nil {
		t.Fatal(err)
	}

	if matches.createCalls != 1 {
		t.Errorf("CreateBatch called %d times, want 1", matches.createCalls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat call changed the match set:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestGenerateMatchesEmptyCandidatePool(t *testing.T) {
	sub := individualSubmission()
	subs := &fakeSubmissions{byID: map[string]*model.QuestionnaireResponse{"sub-1": sub}}
	dir := &fakeDirectory{}
	matches := &fakeMatches{}
	svc := newTestService(subs, dir, matches)

	got, err := svc.GenerateMatches("pat-1", "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d matches, want 0", len(got))
	}
	if matches.createCalls != 0 {
		t.Error("CreateBatch must not run for an empty candidate pool")
	}
}

func TestGenerateMatchesSkipsMalformedProfile(t *testing.T) {
	sub := individualSubmission()
	subs := &fakeSubmissions{byID: map[string]*model.QuestionnaireResponse{"sub-1": sub}}
	dir := &fakeDirectory{profiles: []model.UserProfile{
		{UserID: "", Specializations: model.StringList{"Depressione"}},
		{UserID: "psy-ok", Specializations: model.StringList{"Depressione"}},
	}}
	svc := newTestService(subs, dir, &fakeMatches{})

	got, err := svc.GenerateMatches("pat-1", "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PsychologistID != "psy-ok" {
		t.Fatalf("malformed profile must be skipped, got %+v", got)
	}
}

func TestGenerateMatchesErrors(t *testing.T) {
	subs := &fakeSubmissions{byID: map[string]*model.QuestionnaireResponse{
		"sub-empty": {
			UUIDBase:    model.UUIDBase{ID: "sub-empty"},
			TherapyType: model.TherapyIndividual,
			Responses:   model.ResponseMap{},
		},
	}}
	svc := newTestService(subs, &fakeDirectory{}, &fakeMatches{})

	if _, err := svc.GenerateMatches("pat-1", "missing"); !errors.Is(err, util.ErrSubmissionNotFound) {
		t.Errorf("missing submission: got %v, want ErrSubmissionNotFound", err)
	}
	if _, err := svc.GenerateMatches("pat-1", "sub-empty"); !errors.Is(err, util.ErrInvalidSubmission) {
		t.Errorf("empty responses: got %v, want ErrInvalidSubmission", err)
	}
}

// ---------- lifecycle ----------

func TestUpdateMatchStatusOwnershipAndTransitions(t *testing.T) {
	sub := individualSubmission()
	subs := &fakeSubmissions{byID: map[string]*model.QuestionnaireResponse{"sub-1": sub}}
	dir := &fakeDirectory{profiles: []model.UserProfile{
		{UserID: "psy-1", Specializations: model.StringList{"Depressione"}},
	}}
	matches := &fakeMatches{}
	svc := newTestService(subs, dir, matches)

	created, err := svc.GenerateMatches("pat-1", "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	matchID := created[0].ID

	if _, err := svc.UpdateMatchStatus(matchID, "someone-else", model.MatchDeclined); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("foreign patient: got %v, want ErrPermissionDenied", err)
	}

	if _, err := svc.UpdateMatchStatus(matchID, "pat-1", model.MatchConsultationCompleted); !errors.Is(err, util.ErrInvalidMatchStatus) {
		t.Errorf("skipping booked state: got %v, want ErrInvalidMatchStatus", err)
	}

	updated, err := svc.UpdateMatchStatus(matchID, "pat-1", model.MatchDeclined)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != model.MatchDeclined {
		t.Errorf("status = %s, want declined", updated.Status)
	}

	// Declined is terminal.
	if _, err := svc.UpdateMatchStatus(matchID, "pat-1", model.MatchConsultationBooked); !errors.Is(err, util.ErrInvalidMatchStatus) {
		t.Errorf("leaving terminal state: got %v, want ErrInvalidMatchStatus", err)
	}

	if _, err := svc.UpdateMatchStatus("no-such-match", "pat-1", model.MatchDeclined); !errors.Is(err, util.ErrMatchNotFound) {
		t.Errorf("unknown match: got %v, want ErrMatchNotFound", err)
	}
}

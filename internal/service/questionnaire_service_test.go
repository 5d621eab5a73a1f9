package service

import (
	"errors"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/util"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fakeQuestionnaireStore struct {
	byID map[string]*model.QuestionnaireResponse
}

func newFakeQuestionnaireStore() *fakeQuestionnaireStore {
	return &fakeQuestionnaireStore{byID: map[string]*model.QuestionnaireResponse{}}
}

func (f *fakeQuestionnaireStore) Create(resp *model.QuestionnaireResponse) error {
	if resp.ID == "" {
		resp.ID = model.GenerateUUID()
	}
	f.byID[resp.ID] = resp
	return nil
}

func (f *fakeQuestionnaireStore) FindByID(id string) (*model.QuestionnaireResponse, error) {
	resp, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return resp, nil
}

func (f *fakeQuestionnaireStore) FindBySessionID(sessionID string) (*model.QuestionnaireResponse, error) {
	for _, resp := range f.byID {
		if resp.SessionID != nil && *resp.SessionID == sessionID {
			return resp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestionnaireStore) FindLatestByUserID(userID string) (*model.QuestionnaireResponse, error) {
	var latest *model.QuestionnaireResponse
	for _, resp := range f.byID {
		if resp.UserID == nil || *resp.UserID != userID {
			continue
		}
		if latest == nil || resp.CompletedAt.After(latest.CompletedAt) {
			latest = resp
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f *fakeQuestionnaireStore) AttachUser(id, userID string) error {
	resp, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	resp.UserID = &userID
	return nil
}

func (f *fakeQuestionnaireStore) DeleteUnclaimedBefore(cutoff time.Time) (int64, error) {
	var deleted int64
	for id, resp := range f.byID {
		if resp.UserID == nil && resp.CompletedAt.Before(cutoff) {
			delete(f.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func validSubmitInput() SubmitInput {
	return SubmitInput{
		TherapyType: "individual",
		Responses: model.ResponseMap{
			model.KeySessionModality: model.SingleChoice("Solo online"),
		},
		LocationCity: "Milano",
	}
}

func TestSubmitAnonymousGetsSessionToken(t *testing.T) {
	svc := NewQuestionnaireService(newFakeQuestionnaireStore())

	resp, err := svc.Submit(validSubmitInput())
	if err != nil {
		t.Fatal(err)
	}
	if resp.SessionID == nil || *resp.SessionID == "" {
		t.Fatal("anonymous submission must carry a session token")
	}
	if resp.UserID != nil {
		t.Errorf("anonymous submission must have no user, got %v", *resp.UserID)
	}
	if resp.QuestionnaireVersion != "1.0" {
		t.Errorf("default version = %q, want 1.0", resp.QuestionnaireVersion)
	}
}

func TestSubmitAuthenticatedHasNoSessionToken(t *testing.T) {
	svc := NewQuestionnaireService(newFakeQuestionnaireStore())

	in := validSubmitInput()
	in.UserID = "pat-1"
	resp, err := svc.Submit(in)
	if err != nil {
		t.Fatal(err)
	}
	if resp.UserID == nil || *resp.UserID != "pat-1" {
		t.Error("authenticated submission must carry the user id")
	}
	if resp.SessionID != nil {
		t.Error("authenticated submission must not carry a session token")
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	svc := NewQuestionnaireService(newFakeQuestionnaireStore())

	in := validSubmitInput()
	in.TherapyType = "group"
	if _, err := svc.Submit(in); !errors.Is(err, util.ErrInvalidSubmission) {
		t.Errorf("unknown therapy type: got %v, want ErrInvalidSubmission", err)
	}

	in = validSubmitInput()
	in.Responses = model.ResponseMap{}
	if _, err := svc.Submit(in); !errors.Is(err, util.ErrInvalidSubmission) {
		t.Errorf("empty responses: got %v, want ErrInvalidSubmission", err)
	}
}

func TestClaimAttachesAnonymousSubmission(t *testing.T) {
	store := newFakeQuestionnaireStore()
	svc := NewQuestionnaireService(store)

	created, err := svc.Submit(validSubmitInput())
	if err != nil {
		t.Fatal(err)
	}

	claimed, err := svc.Claim(*created.SessionID, "pat-1")
	if err != nil {
		t.Fatal(err)
	}
	if claimed.UserID == nil || *claimed.UserID != "pat-1" {
		t.Fatal("claim must attach the user")
	}

	// Claiming again with the same user stays a no-op success.
	if _, err := svc.Claim(*created.SessionID, "pat-1"); err != nil {
		t.Errorf("repeat claim by owner: %v", err)
	}

	// A different user can never take over the submission.
	if _, err := svc.Claim(*created.SessionID, "pat-2"); !errors.Is(err, util.ErrSubmissionClaimed) {
		t.Errorf("foreign claim: got %v, want ErrSubmissionClaimed", err)
	}
}

func TestClaimUnknownSession(t *testing.T) {
	svc := NewQuestionnaireService(newFakeQuestionnaireStore())
	if _, err := svc.Claim("no-such-session", "pat-1"); !errors.Is(err, util.ErrSubmissionNotFound) {
		t.Errorf("got %v, want ErrSubmissionNotFound", err)
	}
}

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/repository"
	apperrors "land-steward-backend/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanRepo struct {
	repository.PlanRepository
	draft        *model.LandStewardshipPlan
	assignedCase string
	step3        *repository.Step3Params
	step4        *repository.Step4Params
}

func (f *fakePlanRepo) FindDraftByUserID(ctx context.Context, userID int) (*model.LandStewardshipPlan, error) {
	if f.draft == nil {
		return nil, apperrors.ErrPlanNotFound
	}
	return f.draft, nil
}

func (f *fakePlanRepo) UpsertDraftStep1(ctx context.Context, userID int, req model.PlanStep1Request) (*model.LandStewardshipPlan, error) {
	if f.draft == nil {
		f.draft = &model.LandStewardshipPlan{ID: 12, UserID: &userID, Status: model.PlanStatusDraft}
	}
	f.draft.FullName = req.FullName
	f.draft.PhoneNumber = req.PhoneNumber
	f.draft.Email = req.Email
	f.draft.IsReturningSteward = req.IsReturningSteward
	return f.draft, nil
}

func (f *fakePlanRepo) AssignCaseNumber(ctx context.Context, id int, caseNumber string) (string, error) {
	// 案號只配發一次, 之後回傳既有值
	if f.assignedCase == "" {
		f.assignedCase = caseNumber
	}
	f.draft.CaseNumber = &f.assignedCase
	return f.assignedCase, nil
}

func (f *fakePlanRepo) UpdateStep3(ctx context.Context, id int, params repository.Step3Params) error {
	f.step3 = &params
	return nil
}

func (f *fakePlanRepo) SubmitStep4(ctx context.Context, id int, params repository.Step4Params) error {
	f.step4 = &params
	f.draft.Status = model.PlanStatusSubmitted
	return nil
}

func step1Request() model.PlanStep1Request {
	return model.PlanStep1Request{
		FullName:    "Alex Rivers",
		PhoneNumber: "555-0101",
		Email:       "alex@example.org",
	}
}

func TestPlanService_Step1(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - assigns case number", func(t *testing.T) {
		repo := &fakePlanRepo{}
		svc := NewPlanService(repo)

		resp, err := svc.Step1(ctx, 7, step1Request())

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 12, resp.PlanID)
		assert.Equal(t, fmt.Sprintf("TAS-%d-0012", time.Now().Year()), resp.CaseNumber)
	})

	t.Run("Success - case number stable across retries", func(t *testing.T) {
		repo := &fakePlanRepo{}
		svc := NewPlanService(repo)

		first, err := svc.Step1(ctx, 7, step1Request())
		require.NoError(t, err)

		second, err := svc.Step1(ctx, 7, step1Request())
		require.NoError(t, err)

		assert.Equal(t, first.CaseNumber, second.CaseNumber)
	})
}

func TestPlanService_Step3(t *testing.T) {
	ctx := context.Background()
	existingMap := "plans/old-map.png"

	t.Run("Success - photos accumulate, map replaced", func(t *testing.T) {
		repo := &fakePlanRepo{draft: &model.LandStewardshipPlan{
			ID:                12,
			Status:            model.PlanStatusDraft,
			UploadedPhotos:    []string{"plans/a.jpg"},
			MapScreenshotPath: &existingMap,
		}}
		svc := NewPlanService(repo)

		newMap := "plans/new-map.png"
		err := svc.Step3(ctx, 7, model.PlanStep3Request{}, []string{"plans/b.jpg"}, &newMap)

		require.NoError(t, err)
		require.NotNil(t, repo.step3)
		assert.Equal(t, []string{"plans/a.jpg", "plans/b.jpg"}, repo.step3.UploadedPhotos)
		assert.Equal(t, "plans/new-map.png", *repo.step3.MapScreenshotPath)
	})

	t.Run("Success - map kept when not re-uploaded", func(t *testing.T) {
		repo := &fakePlanRepo{draft: &model.LandStewardshipPlan{
			ID:                12,
			Status:            model.PlanStatusDraft,
			MapScreenshotPath: &existingMap,
		}}
		svc := NewPlanService(repo)

		err := svc.Step3(ctx, 7, model.PlanStep3Request{}, nil, nil)

		require.NoError(t, err)
		require.NotNil(t, repo.step3)
		assert.Equal(t, existingMap, *repo.step3.MapScreenshotPath)
	})

	t.Run("Failed - no draft", func(t *testing.T) {
		repo := &fakePlanRepo{}
		svc := NewPlanService(repo)

		err := svc.Step3(ctx, 7, model.PlanStep3Request{}, nil, nil)

		assert.ErrorIs(t, err, apperrors.ErrPlanNotFound)
	})
}

func TestPlanService_Step4(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - returns case number", func(t *testing.T) {
		caseNumber := "TAS-2026-0012"
		repo := &fakePlanRepo{draft: &model.LandStewardshipPlan{
			ID:         12,
			Status:     model.PlanStatusDraft,
			CaseNumber: &caseNumber,
		}}
		svc := NewPlanService(repo)

		got, err := svc.Step4(ctx, 7, model.PlanStep4Request{AgreesToContact: true})

		require.NoError(t, err)
		assert.Equal(t, caseNumber, got)
		require.NotNil(t, repo.step4)
		assert.True(t, repo.step4.AgreesToContact)
		assert.Equal(t, model.PlanStatusSubmitted, repo.draft.Status)
	})

	t.Run("Failed - no draft", func(t *testing.T) {
		repo := &fakePlanRepo{}
		svc := NewPlanService(repo)

		_, err := svc.Step4(ctx, 7, model.PlanStep4Request{})

		assert.ErrorIs(t, err, apperrors.ErrPlanNotFound)
	})
}

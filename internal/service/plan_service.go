package service

import (
	"context"
	"fmt"
	"time"

	"land-steward-backend/internal/model"
	"land-steward-backend/internal/repository"
	"land-steward-backend/pkg/logger"

	"go.uber.org/zap"
)

// PlanService 土地管理計畫的四步驟精靈。每步驗證並合併自己負責的欄位,
// 欄位彼此不重疊, 合併語意是 last write wins。
type PlanService interface {
	GetDraft(ctx context.Context, userID int) (*model.LandStewardshipPlan, error)
	Step1(ctx context.Context, userID int, req model.PlanStep1Request) (*model.PlanStep1Response, error)
	Step2(ctx context.Context, userID int, req model.PlanStep2Request) error
	Step3(ctx context.Context, userID int, req model.PlanStep3Request, photoPaths []string, mapPath *string) error
	Step4(ctx context.Context, userID int, req model.PlanStep4Request) (string, error)
}

type PlanServiceImpl struct {
	repository repository.PlanRepository
}

func NewPlanService(repo repository.PlanRepository) PlanService {
	return &PlanServiceImpl{repository: repo}
}

func (s *PlanServiceImpl) GetDraft(ctx context.Context, userID int) (*model.LandStewardshipPlan, error) {
	return s.repository.FindDraftByUserID(ctx, userID)
}

// Step1 建立或更新草稿, 並在第一次通過時配發案號(之後不變)
func (s *PlanServiceImpl) Step1(ctx context.Context, userID int, req model.PlanStep1Request) (*model.PlanStep1Response, error) {
	plan, err := s.repository.UpsertDraftStep1(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	caseNumber := fmt.Sprintf("TAS-%d-%04d", time.Now().Year(), plan.ID)
	assigned, err := s.repository.AssignCaseNumber(ctx, plan.ID, caseNumber)
	if err != nil {
		return nil, err
	}

	logger.WithComponent("plans").Info("step1 saved",
		zap.Int("plan_id", plan.ID), zap.String("case_number", assigned))

	return &model.PlanStep1Response{
		Success:    true,
		PlanID:     plan.ID,
		CaseNumber: assigned,
	}, nil
}

func (s *PlanServiceImpl) Step2(ctx context.Context, userID int, req model.PlanStep2Request) error {
	plan, err := s.repository.FindDraftByUserID(ctx, userID)
	if err != nil {
		return err
	}

	return s.repository.UpdateStep2(ctx, plan.ID, repository.Step2Params{
		County:                req.County,
		PropertyAddress:       req.PropertyAddress,
		ApproximateAcreage:    req.ApproximateAcreage,
		PrimaryCurrentLandUse: req.PrimaryCurrentLandUse,
		LandManagementGoals:   req.LandManagementGoals,
		OtherGoalsText:        req.OtherGoalsText,
	})
}

// Step3 照片是累加的, 地圖截圖則是整個替換
func (s *PlanServiceImpl) Step3(ctx context.Context, userID int, req model.PlanStep3Request, photoPaths []string, mapPath *string) error {
	plan, err := s.repository.FindDraftByUserID(ctx, userID)
	if err != nil {
		return err
	}

	photos := append(plan.UploadedPhotos, photoPaths...)

	mergedMap := plan.MapScreenshotPath
	if mapPath != nil {
		mergedMap = mapPath
	}

	return s.repository.UpdateStep3(ctx, plan.ID, repository.Step3Params{
		GateAccessNotes:   req.GateAccessNotes,
		KnownUtilities:    req.KnownUtilities,
		HazardsAwareness:  req.HazardsAwareness,
		GpsPinLink:        req.GpsPinLink,
		UploadedPhotos:    photos,
		MapScreenshotPath: mergedMap,
	})
}

// Step4 收斂草稿: 寫入同意事項並把狀態翻成 submitted
func (s *PlanServiceImpl) Step4(ctx context.Context, userID int, req model.PlanStep4Request) (string, error) {
	plan, err := s.repository.FindDraftByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	err = s.repository.SubmitStep4(ctx, plan.ID, repository.Step4Params{
		AgreesToContact:        req.AgreesToContact,
		SubscribesToNewsletter: req.SubscribesToNewsletter,
		AgreesToSms:            req.AgreesToSms,
	})
	if err != nil {
		return "", err
	}

	caseNumber := ""
	if plan.CaseNumber != nil {
		caseNumber = *plan.CaseNumber
	}

	logger.WithComponent("plans").Info("plan submitted",
		zap.Int("plan_id", plan.ID), zap.String("case_number", caseNumber))

	return caseNumber, nil
}

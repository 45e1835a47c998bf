package repository

import (
	"context"
	"fmt"
	"time"

	"land-steward-backend/internal/model"
	apperrors "land-steward-backend/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Step2Params 第二步欄位(last write wins 合併)
type Step2Params struct {
	County                string
	PropertyAddress       string
	ApproximateAcreage    float64
	PrimaryCurrentLandUse string
	LandManagementGoals   []string
	OtherGoalsText        *string
}

// Step3Params 第三步欄位。UploadedPhotos/MapScreenshotPath 由 service 先合併完成。
type Step3Params struct {
	GateAccessNotes   *string
	KnownUtilities    *string
	HazardsAwareness  *string
	GpsPinLink        *string
	UploadedPhotos    []string
	MapScreenshotPath *string
}

type Step4Params struct {
	AgreesToContact        bool
	SubscribesToNewsletter bool
	AgreesToSms            bool
}

type PlanRepository interface {
	FindDraftByUserID(ctx context.Context, userID int) (*model.LandStewardshipPlan, error)
	UpsertDraftStep1(ctx context.Context, userID int, req model.PlanStep1Request) (*model.LandStewardshipPlan, error)
	AssignCaseNumber(ctx context.Context, id int, caseNumber string) (string, error)
	UpdateStep2(ctx context.Context, id int, params Step2Params) error
	UpdateStep3(ctx context.Context, id int, params Step3Params) error
	SubmitStep4(ctx context.Context, id int, params Step4Params) error
}

type PlanRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) PlanRepository {
	return &PlanRepositoryImpl{
		pool: pool,
	}
}

const planColumns = `id, user_id, full_name, phone_number, email, is_returning_steward,
		county, property_address, approximate_acreage, primary_current_land_use,
		land_management_goals, other_goals_text,
		gate_access_notes, known_utilities, hazards_awareness, gps_pin_link,
		uploaded_photos, map_screenshot_path,
		agrees_to_contact, subscribes_to_newsletter, agrees_to_sms,
		current_step, case_number, status, created_at, updated_at`

func scanPlan(row pgx.Row, plan *model.LandStewardshipPlan) error {
	return row.Scan(
		&plan.ID,
		&plan.UserID,
		&plan.FullName,
		&plan.PhoneNumber,
		&plan.Email,
		&plan.IsReturningSteward,
		&plan.County,
		&plan.PropertyAddress,
		&plan.ApproximateAcreage,
		&plan.PrimaryCurrentLandUse,
		&plan.LandManagementGoals,
		&plan.OtherGoalsText,
		&plan.GateAccessNotes,
		&plan.KnownUtilities,
		&plan.HazardsAwareness,
		&plan.GpsPinLink,
		&plan.UploadedPhotos,
		&plan.MapScreenshotPath,
		&plan.AgreesToContact,
		&plan.SubscribesToNewsletter,
		&plan.AgreesToSms,
		&plan.CurrentStep,
		&plan.CaseNumber,
		&plan.Status,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
}

func (r *PlanRepositoryImpl) FindDraftByUserID(ctx context.Context, userID int) (*model.LandStewardshipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM land_stewardship_plans WHERE user_id = $1 AND status = $2`

	var plan model.LandStewardshipPlan
	err := scanPlan(r.pool.QueryRow(ctx, query, userID, model.PlanStatusDraft), &plan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, err
	}

	return &plan, nil
}

// UpsertDraftStep1 建立或更新使用者的草稿。partial unique index (user_id) WHERE
// status='draft' 保證同一使用者同時只有一份草稿。
func (r *PlanRepositoryImpl) UpsertDraftStep1(ctx context.Context, userID int, req model.PlanStep1Request) (*model.LandStewardshipPlan, error) {
	query := `
		INSERT INTO land_stewardship_plans (user_id, full_name, phone_number, email, is_returning_steward, current_step, status)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (user_id) WHERE status = 'draft'
		DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone_number = EXCLUDED.phone_number,
			email = EXCLUDED.email,
			is_returning_steward = EXCLUDED.is_returning_steward,
			updated_at = now()
		RETURNING ` + planColumns

	var plan model.LandStewardshipPlan
	err := scanPlan(r.pool.QueryRow(ctx, query,
		userID, req.FullName, req.PhoneNumber, req.Email, req.IsReturningSteward, model.PlanStatusDraft,
	), &plan)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert plan: %w", err)
	}

	return &plan, nil
}

// AssignCaseNumber 只在尚未有案號時寫入, 回傳實際生效的案號
func (r *PlanRepositoryImpl) AssignCaseNumber(ctx context.Context, id int, caseNumber string) (string, error) {
	query := `
		UPDATE land_stewardship_plans
		SET case_number = COALESCE(case_number, $1), updated_at = $2
		WHERE id = $3
		RETURNING case_number
	`

	var assigned string
	err := r.pool.QueryRow(ctx, query, caseNumber, time.Now().UTC(), id).Scan(&assigned)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperrors.ErrPlanNotFound
		}
		return "", err
	}

	return assigned, nil
}

func (r *PlanRepositoryImpl) UpdateStep2(ctx context.Context, id int, params Step2Params) error {
	query := `
		UPDATE land_stewardship_plans
		SET county = $1,
		    property_address = $2,
		    approximate_acreage = $3,
		    primary_current_land_use = $4,
		    land_management_goals = $5,
		    other_goals_text = $6,
		    current_step = GREATEST(current_step, 2),
		    updated_at = $7
		WHERE id = $8
	`

	result, err := r.pool.Exec(ctx, query,
		params.County, params.PropertyAddress, params.ApproximateAcreage,
		params.PrimaryCurrentLandUse, params.LandManagementGoals, params.OtherGoalsText,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPlanNotFound
	}

	return nil
}

func (r *PlanRepositoryImpl) UpdateStep3(ctx context.Context, id int, params Step3Params) error {
	query := `
		UPDATE land_stewardship_plans
		SET gate_access_notes = $1,
		    known_utilities = $2,
		    hazards_awareness = $3,
		    gps_pin_link = $4,
		    uploaded_photos = $5,
		    map_screenshot_path = $6,
		    current_step = GREATEST(current_step, 3),
		    updated_at = $7
		WHERE id = $8
	`

	result, err := r.pool.Exec(ctx, query,
		params.GateAccessNotes, params.KnownUtilities, params.HazardsAwareness,
		params.GpsPinLink, params.UploadedPhotos, params.MapScreenshotPath,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPlanNotFound
	}

	return nil
}

func (r *PlanRepositoryImpl) SubmitStep4(ctx context.Context, id int, params Step4Params) error {
	query := `
		UPDATE land_stewardship_plans
		SET agrees_to_contact = $1,
		    subscribes_to_newsletter = $2,
		    agrees_to_sms = $3,
		    current_step = 4,
		    status = $4,
		    updated_at = $5
		WHERE id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		params.AgreesToContact, params.SubscribesToNewsletter, params.AgreesToSms,
		model.PlanStatusSubmitted, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPlanNotFound
	}

	return nil
}

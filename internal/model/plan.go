package model

import "time"

// PlanStatus 土地管理計畫狀態
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusSubmitted PlanStatus = "submitted"
	PlanStatusReviewed  PlanStatus = "reviewed"
)

// LandStewardshipPlan 土地管理計畫。每個使用者同時只有一份 draft,
// 由四個步驟逐步合併欄位(last write wins), 第四步送出後轉為 submitted。
type LandStewardshipPlan struct {
	ID                     int        `json:"id" db:"id"`
	UserID                 *int       `json:"user_id,omitempty" db:"user_id"`
	FullName               string     `json:"full_name" db:"full_name"`
	PhoneNumber            string     `json:"phone_number" db:"phone_number"`
	Email                  string     `json:"email" db:"email"`
	IsReturningSteward     bool       `json:"is_returning_steward" db:"is_returning_steward"`
	County                 *string    `json:"county,omitempty" db:"county"`
	PropertyAddress        *string    `json:"property_address,omitempty" db:"property_address"`
	ApproximateAcreage     *float64   `json:"approximate_acreage,omitempty" db:"approximate_acreage"`
	PrimaryCurrentLandUse  *string    `json:"primary_current_land_use,omitempty" db:"primary_current_land_use"`
	LandManagementGoals    []string   `json:"land_management_goals" db:"land_management_goals"`
	OtherGoalsText         *string    `json:"other_goals_text,omitempty" db:"other_goals_text"`
	GateAccessNotes        *string    `json:"gate_access_notes,omitempty" db:"gate_access_notes"`
	KnownUtilities         *string    `json:"known_utilities,omitempty" db:"known_utilities"`
	HazardsAwareness       *string    `json:"hazards_awareness,omitempty" db:"hazards_awareness"`
	GpsPinLink             *string    `json:"gps_pin_link,omitempty" db:"gps_pin_link"`
	UploadedPhotos         []string   `json:"uploaded_photos" db:"uploaded_photos"`
	MapScreenshotPath      *string    `json:"map_screenshot_path,omitempty" db:"map_screenshot_path"`
	AgreesToContact        bool       `json:"agrees_to_contact" db:"agrees_to_contact"`
	SubscribesToNewsletter bool       `json:"subscribes_to_newsletter" db:"subscribes_to_newsletter"`
	AgreesToSms            bool       `json:"agrees_to_sms" db:"agrees_to_sms"`
	CurrentStep            int        `json:"current_step" db:"current_step"`
	CaseNumber             *string    `json:"case_number,omitempty" db:"case_number"`
	Status                 PlanStatus `json:"status" db:"status"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// PlanStep1Request 第一步: 聯絡人資料
type PlanStep1Request struct {
	FullName           string `json:"full_name" binding:"required"`
	PhoneNumber        string `json:"phone_number" binding:"required"`
	Email              string `json:"email" binding:"required,email"`
	IsReturningSteward bool   `json:"is_returning_steward"`
}

// PlanStep2Request 第二步: 土地概況
type PlanStep2Request struct {
	County                string   `json:"county" binding:"required"`
	PropertyAddress       string   `json:"property_address" binding:"required"`
	ApproximateAcreage    float64  `json:"approximate_acreage" binding:"required"`
	PrimaryCurrentLandUse string   `json:"primary_current_land_use" binding:"required"`
	LandManagementGoals   []string `json:"land_management_goals" binding:"required"`
	OtherGoalsText        *string  `json:"other_goals_text"`
}

// PlanStep3Request 第三步: 通行與安全資訊(檔案欄位走 multipart, 不在這裡)
type PlanStep3Request struct {
	GateAccessNotes  *string `form:"gate_access_notes"`
	KnownUtilities   *string `form:"known_utilities"`
	HazardsAwareness *string `form:"hazards_awareness"`
	GpsPinLink       *string `form:"gps_pin_link"`
}

// PlanStep4Request 第四步: 同意事項, 送出計畫
type PlanStep4Request struct {
	AgreesToContact        bool `json:"agrees_to_contact"`
	SubscribesToNewsletter bool `json:"subscribes_to_newsletter"`
	AgreesToSms            bool `json:"agrees_to_sms"`
}

type PlanStep1Response struct {
	Success    bool   `json:"success"`
	PlanID     int    `json:"plan_id"`
	CaseNumber string `json:"case_number"`
}

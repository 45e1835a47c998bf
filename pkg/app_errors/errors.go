package apperrors

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrAlreadyTransitioned 表示訂單已離開預期的前置狀態(webhook 重送時的冪等 no-op)
	ErrAlreadyTransitioned = errors.New("order already transitioned")
	// ErrCodeCollision 表示票號或兌換碼撞到唯一索引, 整個交易回滾後可重試
	ErrCodeCollision = errors.New("ticket code collision")
)

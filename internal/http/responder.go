package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

var (
	errBadRequestBody      = errors.New("無効なリクエスト形式です。")
	errUnknownKind         = errors.New("指定されたリソース種別は存在しません。")
	errMissingResourceID   = errors.New("リソース ID を指定してください。")
	errMissingEmployeeID   = errors.New("社員 ID を指定してください。")
	retryAfterStorageError = "1"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		policy   *booking.PolicyViolation
		conflict *booking.ConflictError
		storage  *booking.StorageError
		vErr     *application.ValidationError
	)
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "入力内容に誤りがあります。",
			Errors:    localizeValidationErrors(vErr),
		})
	case errors.As(err, &policy):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: policyErrorCode(policy.Reason),
			Message:   policyMessage(policy),
			MaxWeeks:  policy.MaxWeeks,
		})
	case errors.As(err, &conflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "RESOURCE_CONFLICT",
			Message:   "指定された時間帯は既に予約されています。",
			Conflicts: newReservationDTOs(conflict.Conflicts),
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "この操作を実行する権限がありません。",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "NOT_FOUND",
			Message:   "指定されたリソースが見つかりません。",
		})
	case errors.As(err, &storage), errors.Is(err, context.DeadlineExceeded):
		r.loggerFor(ctx).ErrorContext(ctx, "storage unavailable", "error", err)
		w.Header().Set("Retry-After", retryAfterStorageError)
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "STORAGE_UNAVAILABLE",
			Message:   "一時的に処理できません。しばらくしてから再試行してください。",
		})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "サーバー内部でエラーが発生しました。"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "リクエスト内容が正しくありません。"
	case http.StatusForbidden:
		return "この操作を実行する権限がありません。"
	case http.StatusNotFound:
		return "指定されたリソースが見つかりません。"
	case http.StatusConflict:
		return "要求はリソースの現在の状態と競合しています。"
	case http.StatusUnprocessableEntity:
		return "予約ルールにより受け付けられません。"
	case http.StatusServiceUnavailable:
		return "一時的に処理できません。しばらくしてから再試行してください。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

func policyErrorCode(reason booking.PolicyReason) string {
	return "BOOKING_" + strings.ToUpper(string(reason))
}

func policyMessage(v *booking.PolicyViolation) string {
	switch v.Reason {
	case booking.ReasonPastDate:
		return "過去の日付は予約できません。"
	case booking.ReasonWeekendNotAllowed:
		return "土日は予約できません。"
	case booking.ReasonAdvanceWindowExceeded:
		return "予約可能な期間を超えています。"
	case booking.ReasonHolidayBlackout:
		return "休日のため予約できません。"
	case booking.ReasonEmployeeAlreadyBooked:
		return "同じ日に既に予約があります。"
	default:
		return v.Error()
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "employee id is required", "employee id cannot be empty":
		return "社員 ID は必須です。"
	case "resource id is required", "resource id cannot be empty":
		return "リソース ID は必須です。"
	case "date is required", "date cannot be empty":
		return "日付は必須です。"
	case "date must be YYYY-MM-DD":
		return "日付は YYYY-MM-DD 形式で指定してください。"
	case "reservation id is required":
		return "予約 ID は必須です。"
	case "an interval or a timeslot is required":
		return "時間帯またはタイムスロットを指定してください。"
	case "provide either an interval or a timeslot, not both":
		return "時間帯とタイムスロットは同時に指定できません。"
	case "start must be before end", "start must be before end and within the day":
		return "終了時刻は開始時刻より後である必要があります。"
	case "time must be HH:MM":
		return "時刻は HH:MM 形式で指定してください。"
	case "rejected by storage constraints":
		return "保存時の制約により受け付けられません。"
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	MaxWeeks  int               `json:"max_weeks,omitempty"`
	Conflicts []reservationDTO  `json:"conflicts,omitempty"`
}

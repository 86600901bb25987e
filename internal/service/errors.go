package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/pkg/validator"
)

// validate runs the struct tags of in and converts failures into a ValidationError
func validate(in any) error {
	err := validator.ValidateStruct(in)
	if err == nil {
		return nil
	}
	var fields validator.FieldErrors
	if errors.As(err, &fields) {
		return &apperrors.ValidationError{Message: "validation failed", Fields: fields}
	}
	return err
}

// entityName is the human name of a kind used in errors and audit rows
func entityName(kind models.EntityKind) string {
	switch kind {
	case models.KindSubCategory:
		return "sub-category"
	case models.KindEssay:
		return "essay question"
	}
	return string(kind)
}

// audit writes an audit row through the transaction store
func audit(ctx context.Context, tx Store, actor models.Actor, action string, kind models.EntityKind, details string) error {
	var userID *uint
	if actor.UserID != 0 {
		id := actor.UserID
		userID = &id
	}
	err := tx.CreateAuditLog(ctx, &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Resource:  string(kind),
		Details:   details,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	})
	if err != nil {
		slog.Error("Failed to write audit log", "action", action, "resource", kind, "error", err)
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "message_service/internal/lib/logger"
	"message_service/internal/models"
)

// ErrForbidden means the caller is not the owner of the message.
var ErrForbidden = errors.New("not the owner of the message")

type Messaging struct {
	log         *slog.Logger
	msgSaver    MessageSaver
	msgProvider MessageProvider
}

type MessageSaver interface {
	SaveMessage(ctx context.Context, ownerID int64, content string) (models.Message, error)
	UpdateMessageContent(ctx context.Context, id int64, content string) (models.Message, error)
	DeleteMessage(ctx context.Context, id int64) (models.Message, error)
}

type MessageProvider interface {
	MessageByID(ctx context.Context, id int64) (models.Message, error)
	MessagesByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]models.Message, error)
}

func New(
	log *slog.Logger,
	messageSaver MessageSaver,
	messageProvider MessageProvider,
) *Messaging {
	return &Messaging{
		log:         log,
		msgSaver:    messageSaver,
		msgProvider: messageProvider,
	}
}

func (m *Messaging) Create(ctx context.Context, caller models.User, content string) (models.Message, error) {
	const op = "messaging.Create"

	log := m.log.With(slog.String("op", op))

	msg, err := m.msgSaver.SaveMessage(ctx, caller.ID, content)
	if err != nil {
		log.Error("failed to save message", sl.Err(err))
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("message created", slog.Int64("id", msg.ID), slog.Int64("uid", caller.ID))

	return msg, nil
}

// List returns the caller's messages in creation order.
func (m *Messaging) List(ctx context.Context, caller models.User, offset, limit int) ([]models.Message, error) {
	const op = "messaging.List"

	messages, err := m.msgProvider.MessagesByOwner(ctx, caller.ID, offset, limit)
	if err != nil {
		m.log.Error("failed to list messages", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return messages, nil
}

// Update replaces the content of the caller's message. The lookup runs
// before the owner check, so a missing message is ErrMessageNotFound even
// for a caller who would not have owned it.
func (m *Messaging) Update(ctx context.Context, caller models.User, id int64, content string) (models.Message, error) {
	const op = "messaging.Update"

	log := m.log.With(slog.String("op", op), slog.Int64("id", id))

	msg, err := m.msgProvider.MessageByID(ctx, id)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	if msg.OwnerID != caller.ID {
		log.Warn("update forbidden", slog.Int64("uid", caller.ID))
		return models.Message{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	updated, err := m.msgSaver.UpdateMessageContent(ctx, id, content)
	if err != nil {
		log.Error("failed to update message", sl.Err(err))
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("message updated")

	return updated, nil
}

// Delete removes the caller's message and returns its last state.
func (m *Messaging) Delete(ctx context.Context, caller models.User, id int64) (models.Message, error) {
	const op = "messaging.Delete"

	log := m.log.With(slog.String("op", op), slog.Int64("id", id))

	msg, err := m.msgProvider.MessageByID(ctx, id)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	if msg.OwnerID != caller.ID {
		log.Warn("delete forbidden", slog.Int64("uid", caller.ID))
		return models.Message{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	deleted, err := m.msgSaver.DeleteMessage(ctx, id)
	if err != nil {
		log.Error("failed to delete message", sl.Err(err))
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("message deleted")

	return deleted, nil
}

package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/placementcell/internal/app/models"
	"github.com/yigit/placementcell/internal/app/repositories"
	"github.com/yigit/placementcell/internal/pkg/email"
)

const mailDebugLimit = 10

// MailSettings reports which mail settings are loaded, without the secrets
type MailSettings struct {
	ServerLoaded   bool `json:"mailServerLoaded"`
	UsernameLoaded bool `json:"mailUsernameLoaded"`
	PasswordLoaded bool `json:"mailPasswordLoaded"`
	FromLoaded     bool `json:"mailFromLoaded"`
	Port           int  `json:"mailPort"`
	UseTLS         bool `json:"mailUseTls"`
}

// MailDebugReport is the admin view of mail delivery health
type MailDebugReport struct {
	MailSettings
	RecentNotifications []*models.NotificationLog `json:"recentNotificationStatuses"`
}

// NotificationService sends email and records every attempt
type NotificationService interface {
	// Send never fails the caller; the outcome is in the returned log's Status
	Send(ctx context.Context, userID *int64, toEmail, subject, body string) *models.NotificationLog
	MailDebug(ctx context.Context) (*MailDebugReport, error)
}

type notificationServiceImpl struct {
	store    repositories.Store
	sender   email.Sender
	settings MailSettings
	logger   zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store repositories.Store, sender email.Sender, settings MailSettings, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		store:    store,
		sender:   sender,
		settings: settings,
		logger:   logger.With().Str("service", "notification").Logger(),
	}
}

func (s *notificationServiceImpl) Send(ctx context.Context, userID *int64, toEmail, subject, body string) *models.NotificationLog {
	entry := &models.NotificationLog{
		UserID:  userID,
		Email:   toEmail,
		Subject: subject,
		Body:    body,
		Status:  models.NotificationPending,
	}
	logged := true
	if err := s.store.Notifications().Create(ctx, entry); err != nil {
		logged = false
		s.logger.Error().Err(err).Str("email", toEmail).Msg("Failed to record notification")
	}

	switch {
	case s.sender == nil || !s.sender.Configured():
		entry.Status = models.NotificationNoMailServer
	default:
		if err := s.sender.Send(ctx, toEmail, subject, body); err != nil {
			entry.Status = models.NotificationFailed
			entry.SetError(err.Error())
			s.logger.Warn().Err(err).Str("email", toEmail).Str("subject", subject).Msg("Email delivery failed")
		} else {
			entry.Status = models.NotificationSent
		}
	}

	if logged {
		if err := s.store.Notifications().UpdateStatus(ctx, entry); err != nil {
			s.logger.Error().Err(err).Int64("notificationID", entry.ID).Msg("Failed to record notification outcome")
		}
	}
	return entry
}

func (s *notificationServiceImpl) MailDebug(ctx context.Context) (*MailDebugReport, error) {
	recent, err := s.store.Notifications().ListRecent(ctx, mailDebugLimit)
	if err != nil {
		return nil, err
	}
	return &MailDebugReport{MailSettings: s.settings, RecentNotifications: recent}, nil
}

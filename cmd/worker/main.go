package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"tutorhub/internal/compliance"
	"tutorhub/internal/config"
	"tutorhub/internal/logging"
	"tutorhub/internal/mail"
	"tutorhub/internal/meeting"
	"tutorhub/internal/member"
	"tutorhub/internal/notification"
	"tutorhub/internal/queue"
	"tutorhub/internal/store"
	"tutorhub/internal/volunteer"
)

const runLockKey = "compliance:runlock"

// Worker hosts the weekly compliance run, the meeting-reminder sweep and the
// notification email consumer.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewMongo(cfg.MongoURI, cfg.MongoName)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	defer db.Close(context.Background())

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "tutorhub:events")
	}

	var mailer mail.Mailer
	if cfg.SendgridKey != "" {
		mailer = mail.NewSendgrid(cfg.SendgridKey, cfg.MailFromName, cfg.MailFrom, cfg.AppName)
	} else {
		mailer = mail.NewConsole(logger)
		logger.Info("no SENDGRID_API_KEY set, mail goes to the log")
	}

	volunteerRepo := volunteer.NewRepository(db.Collection(store.ColVolunteers))
	memberRepo := member.NewRepository(db.Collection(store.ColMemberships))
	notifRepo := notification.NewRepository(db.Collection(store.ColNotifs))
	meetingRepo := meeting.NewRepository(db.Collection(store.ColMeetings))
	reportRepo := compliance.NewReportRepository(db.Collection(store.ColReports))

	loc := cfg.Location()
	evaluator := compliance.NewEvaluator(volunteerRepo, memberRepo, notifRepo, reportRepo, loc, logger)
	runner := compliance.NewRunner(evaluator, db, q, logger)
	reminder := meeting.NewReminder(meetingRepo, mailer, cfg.ReminderWindow, logger)

	go runComplianceSchedule(ctx, cfg, redisClient, runner, loc, logger)
	go runReminderSweep(ctx, cfg, reminder, logger)

	consumeEvents(ctx, q, volunteerRepo, mailer, logger)
	logger.Info("worker stopped")
}

// runComplianceSchedule fires the scheduled run at each RRULE occurrence. The
// redis lock serializes runs across worker replicas and across a run that
// outlives its slot.
func runComplianceSchedule(ctx context.Context, cfg config.App, redisClient *store.Redis, runner *compliance.Runner, loc *time.Location, logger *zap.Logger) {
	rule, err := rrule.StrToRRule(cfg.ComplianceRRule)
	if err != nil {
		logger.Error("invalid COMPLIANCE_RRULE, compliance schedule disabled", zap.Error(err))
		return
	}
	rule.DTStart(time.Now().In(loc).AddDate(-1, 0, 0))

	for {
		next := rule.After(time.Now().In(loc), false)
		if next.IsZero() {
			logger.Error("compliance schedule has no next occurrence")
			return
		}
		logger.Info("next compliance run scheduled", zap.Time("at", next))

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		token, ok, err := redisClient.AcquireLock(ctx, runLockKey, cfg.ComplianceLockTTL)
		if err != nil {
			logger.Error("acquiring run lock failed", zap.Error(err))
			continue
		}
		if !ok {
			logger.Warn("compliance run already in progress elsewhere, skipping")
			continue
		}

		out, err := runner.RunScheduled(ctx, time.Now())
		if err != nil {
			logger.Error("scheduled compliance run failed", zap.Error(err))
		} else {
			logger.Info("scheduled compliance run committed",
				zap.Time("week_start", out.WeekStart),
				zap.Int("flagged", len(out.Members)),
				zap.Int("notifications", len(out.CreatedNotifications)))
		}

		if err := redisClient.ReleaseLock(ctx, runLockKey, token); err != nil {
			logger.Warn("releasing run lock failed", zap.Error(err))
		}
	}
}

// runReminderSweep runs the meeting reminder job on a fixed interval.
func runReminderSweep(ctx context.Context, cfg config.App, reminder *meeting.Reminder, logger *zap.Logger) {
	ticker := time.NewTicker(cfg.ReminderSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := reminder.Sweep(ctx, time.Now())
			if err != nil {
				logger.Error("reminder sweep failed", zap.Error(err))
				continue
			}
			if count > 0 {
				logger.Info("meeting reminders sent", zap.Int("count", count))
			}
		}
	}
}

// consumeEvents delivers notification emails and logs lecture submissions.
func consumeEvents(ctx context.Context, q queue.Queue, volunteers *volunteer.Repository, mailer mail.Mailer, logger *zap.Logger) {
	messages, err := q.Consume(ctx)
	if err != nil {
		logger.Fatal("queue consume init failed", zap.Error(err))
	}

	logger.Info("worker started, waiting for messages")
	for msg := range messages {
		switch msg.Type {
		case queue.TypeNotificationCreated:
			var n notification.Notification
			if err := json.Unmarshal(msg.Body, &n); err != nil {
				logger.Warn("bad notification message", zap.Error(err))
				continue
			}
			v, err := volunteers.GetByID(ctx, n.UserID)
			if err != nil {
				logger.Warn("notification recipient lookup failed",
					zap.String("user", n.UserID.Hex()), zap.Error(err))
				continue
			}
			err = mailer.Send(ctx, mail.Message{
				ToName:  v.Name,
				ToEmail: v.Email,
				Subject: "Weekly lecture check",
				Body:    n.Message,
			})
			if err != nil {
				logger.Warn("notification mail failed", zap.String("to", v.Email), zap.Error(err))
				continue
			}
			logger.Debug("notification mailed", zap.String("to", v.Email))

		case queue.TypeLectureSubmitted:
			var evt volunteer.LectureSubmitted
			if err := json.Unmarshal(msg.Body, &evt); err != nil {
				continue
			}
			logger.Debug("lecture submitted",
				zap.String("volunteer", evt.VolunteerID),
				zap.String("subject", evt.Subject))
		}
	}
}

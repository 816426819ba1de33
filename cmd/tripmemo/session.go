package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trip-memo/client"
	"trip-memo/memo"
	"trip-memo/storage"
)

const maxPasswordAttempts = 3

var (
	errPasswordRejected = errors.New("password rejected")
	errBusy             = errors.New("operation already in progress")
)

// session is one command invocation's controller and its collaborators.
type session struct {
	cfg     config
	ctrl    *memo.Controller
	cache   *storage.Cache
	redis   *redis.Client
	prompt  prompter
	out     io.Writer
	failure error
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := log.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(log.WarnLevel)
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	api := client.New(cfg.API)
	s := &session{
		cfg:    cfg,
		redis:  storage.NewRedisClient(cfg.Redis),
		prompt: newPrompter(cmd),
		out:    cmd.OutOrStdout(),
	}
	s.cache = storage.NewCache(api, s.redis, cfg.CacheTTL, logger)
	s.ctrl = memo.NewController(memo.Config{
		PlanID:   cfg.Plan,
		SpotID:   cfg.Spot,
		Password: cfg.Password,
		Remote:   api,
		Cache:    s.cache,
		Reporter: memo.ReporterFunc(func(err error) { s.failure = err }),
		Logger:   logger,
	})
	return s, nil
}

func (s *session) Close() {
	s.ctrl.Close()
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

// withReauth runs op, asking for a new password each time the backend
// rejects it. reopen restores whatever the rejection closed.
func (s *session) withReauth(ctx context.Context, op func(context.Context) memo.Outcome, reopen func()) error {
	for attempt := 1; ; attempt++ {
		switch op(ctx) {
		case memo.OutcomeApplied:
			return nil
		case memo.OutcomeFailed:
			return describeFailure(s.failure)
		case memo.OutcomeSkipped:
			return errBusy
		}
		if attempt == maxPasswordAttempts {
			return errPasswordRejected
		}
		pw, err := s.readPassword()
		if err != nil {
			return err
		}
		s.ctrl.Reauthorize(pw)
		if reopen != nil {
			reopen()
		}
	}
}

func (s *session) readPassword() (string, error) {
	pw, err := s.prompt.Password("Password rejected. Password")
	if err != nil {
		return "", fmt.Errorf("%w: %v", errPasswordRejected, err)
	}
	return pw, nil
}

func (s *session) confirm(question string) (bool, error) {
	return s.prompt.Confirm(question)
}

func describeFailure(err error) error {
	switch {
	case err == nil:
		return errors.New("operation failed")
	case memo.IsNotFound(err):
		return fmt.Errorf("no longer exists, refresh the list: %w", err)
	default:
		return fmt.Errorf("could not reach the trip API: %w", err)
	}
}

package program

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marcelofeitoza/crowd-estate/internal/solana"
)

// Default confirmation polling configuration.
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 2 * time.Second
)

// ErrTransactionFailed is returned when the ledger reports an error for a
// submitted transaction.
var ErrTransactionFailed = errors.New("transaction failed on ledger")

// ErrConfirmTimeout is returned when a transaction is not confirmed
// within the timeout.
var ErrConfirmTimeout = errors.New("transaction confirmation timed out")

// Submitter submits pre-signed transactions and waits for confirmation.
// Transaction construction and signing happen in the caller's wallet;
// only the serialized bytes pass through here.
type Submitter struct {
	rpc            solana.RPCClient
	confirmTimeout time.Duration
	pollInterval   time.Duration
	log            *logrus.Entry
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithConfirmTimeout overrides how long to wait for confirmation.
func WithConfirmTimeout(d time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.confirmTimeout = d
	}
}

// WithPollInterval overrides the status polling interval.
func WithPollInterval(d time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.pollInterval = d
	}
}

// NewSubmitter creates a Submitter with default confirmation policy.
func NewSubmitter(rpc solana.RPCClient, log *logrus.Logger, opts ...SubmitterOption) *Submitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Submitter{
		rpc:            rpc,
		confirmTimeout: DefaultConfirmTimeout,
		pollInterval:   DefaultPollInterval,
		log:            log.WithField("component", "submitter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitAndConfirm submits a signed base64 transaction and polls until it
// reaches confirmed commitment. Returns the signature.
func (s *Submitter) SubmitAndConfirm(ctx context.Context, signedTxBase64 string) (string, error) {
	sig, err := s.rpc.SendTransaction(ctx, signedTxBase64)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	s.log.WithField("signature", sig).Debug("transaction submitted, awaiting confirmation")

	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return sig, fmt.Errorf("signature %s: %w", sig, ErrConfirmTimeout)
			}
			return sig, ctx.Err()
		case <-ticker.C:
			statuses, err := s.rpc.GetSignatureStatuses(ctx, []string{sig})
			if err != nil {
				s.log.WithError(err).Warn("signature status poll failed, retrying")
				continue
			}
			if len(statuses) == 0 || statuses[0] == nil {
				continue
			}
			status := statuses[0]
			if status.Err != nil {
				return sig, fmt.Errorf("signature %s: %w: %v", sig, ErrTransactionFailed, status.Err)
			}
			if status.Confirmed() {
				s.log.WithFields(logrus.Fields{
					"signature": sig,
					"slot":      status.Slot,
				}).Info("transaction confirmed")
				return sig, nil
			}
		}
	}
}

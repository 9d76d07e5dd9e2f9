package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marcelofeitoza/crowd-estate/internal/observability"
	"github.com/marcelofeitoza/crowd-estate/internal/program"
	"github.com/marcelofeitoza/crowd-estate/internal/solana"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

// indexSyncTimeout bounds the best-effort index refresh after a
// confirmed mutation. The caller never waits on a slow index.
const indexSyncTimeout = 5 * time.Second

// Writer accepts pre-signed transactions for the program's mutating
// instructions, confirms them, and restores read coherence: cache
// entries touched by the mutation are invalidated unconditionally, and
// the off-chain index is refreshed best effort. Transaction construction
// and signing happen in the caller's wallet.
type Writer struct {
	submitter   *program.Submitter
	ledger      *program.Client
	invalidator Invalidator
	properties  storage.PropertyIndexStore
	investments storage.InvestmentIndexStore
	log         *logrus.Entry
}

// NewWriter creates a write-path coordinator. The index stores may be
// nil when no off-chain index is configured.
func NewWriter(
	submitter *program.Submitter,
	ledger *program.Client,
	inv Invalidator,
	properties storage.PropertyIndexStore,
	investments storage.InvestmentIndexStore,
	log *logrus.Logger,
) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{
		submitter:   submitter,
		ledger:      ledger,
		invalidator: inv,
		properties:  properties,
		investments: investments,
		log:         log.WithField("component", "writer"),
	}
}

// CreatePropertyRequest carries a signed create-property transaction.
type CreatePropertyRequest struct {
	SignedTx string `json:"transaction"`
	Admin    string `json:"admin"`
	Name     string `json:"property_name"`
}

// InvestmentRequest carries a signed invest, withdraw or claim
// transaction for one (investor, property) pair.
type InvestmentRequest struct {
	SignedTx string `json:"transaction"`
	Investor string `json:"investor"`
	Property string `json:"property"`
}

// PropertyTxRequest carries a signed admin transaction against one
// property (distribute dividends, close).
type PropertyTxRequest struct {
	SignedTx string `json:"transaction"`
	Admin    string `json:"admin"`
	Property string `json:"property"`
}

// CreateProperty submits a create-property transaction. On confirmation
// the listing is invalidated and the new property is indexed.
func (w *Writer) CreateProperty(ctx context.Context, req CreatePropertyRequest) (string, error) {
	if err := solana.ValidatePublicKey(req.Admin); err != nil {
		return "", fmt.Errorf("%w: admin %q: %v", ErrInvalidInput, req.Admin, err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return "", fmt.Errorf("%w: empty property name", ErrInvalidInput)
	}

	sig, err := w.confirm(ctx, req.SignedTx)
	if err != nil {
		return sig, err
	}

	pda, _, err := w.ledger.PropertyPDA(req.Admin, req.Name)
	if err != nil {
		w.log.WithError(err).Warn("property PDA derivation failed, skipping index sync")
		w.invalidate(ctx, "", "")
		return sig, nil
	}

	w.invalidate(ctx, pda, "")
	w.syncProperty(pda)
	return sig, nil
}

// Invest submits an invest transaction for the pair, invalidating the
// property and the investor's portfolio on confirmation.
func (w *Writer) Invest(ctx context.Context, req InvestmentRequest) (string, error) {
	return w.investmentTx(ctx, req, false)
}

// Withdraw submits a full-withdrawal transaction. The investment account
// closes on the ledger; its index record is removed.
func (w *Writer) Withdraw(ctx context.Context, req InvestmentRequest) (string, error) {
	return w.investmentTx(ctx, req, true)
}

// ClaimDividends submits a claim transaction, refreshing the investor's
// claimed-dividends projection.
func (w *Writer) ClaimDividends(ctx context.Context, req InvestmentRequest) (string, error) {
	return w.investmentTx(ctx, req, false)
}

func (w *Writer) investmentTx(ctx context.Context, req InvestmentRequest, withdrawal bool) (string, error) {
	if err := solana.ValidatePublicKey(req.Investor); err != nil {
		return "", fmt.Errorf("%w: investor %q: %v", ErrInvalidInput, req.Investor, err)
	}
	if err := solana.ValidatePublicKey(req.Property); err != nil {
		return "", fmt.Errorf("%w: property %q: %v", ErrInvalidInput, req.Property, err)
	}

	sig, err := w.confirm(ctx, req.SignedTx)
	if err != nil {
		return sig, err
	}

	w.invalidate(ctx, req.Property, req.Investor)
	w.syncProperty(req.Property)
	w.syncInvestment(req.Investor, req.Property, withdrawal)
	return sig, nil
}

// DistributeDividends submits an admin dividend distribution. Every
// investor's claimable balance changes, so only the broad listing and
// property entries can be invalidated; portfolio entries age out by TTL.
func (w *Writer) DistributeDividends(ctx context.Context, req PropertyTxRequest) (string, error) {
	return w.propertyTx(ctx, req)
}

// CloseProperty submits an admin close transaction. The closed flag is
// monotonic; once confirmed the property accepts no further investment.
func (w *Writer) CloseProperty(ctx context.Context, req PropertyTxRequest) (string, error) {
	return w.propertyTx(ctx, req)
}

func (w *Writer) propertyTx(ctx context.Context, req PropertyTxRequest) (string, error) {
	if err := solana.ValidatePublicKey(req.Admin); err != nil {
		return "", fmt.Errorf("%w: admin %q: %v", ErrInvalidInput, req.Admin, err)
	}
	if err := solana.ValidatePublicKey(req.Property); err != nil {
		return "", fmt.Errorf("%w: property %q: %v", ErrInvalidInput, req.Property, err)
	}

	sig, err := w.confirm(ctx, req.SignedTx)
	if err != nil {
		return sig, err
	}

	w.invalidate(ctx, req.Property, "")
	w.syncProperty(req.Property)
	return sig, nil
}

// confirm submits the transaction and waits for confirmed commitment.
func (w *Writer) confirm(ctx context.Context, signedTx string) (string, error) {
	if strings.TrimSpace(signedTx) == "" {
		return "", fmt.Errorf("%w: empty transaction", ErrInvalidInput)
	}

	observability.RecordTxSubmitted()
	sig, err := w.submitter.SubmitAndConfirm(ctx, signedTx)
	if err != nil {
		switch {
		case errors.Is(err, program.ErrTransactionFailed):
			observability.RecordTxFailed("ledger_error")
			return sig, err
		case errors.Is(err, program.ErrConfirmTimeout):
			observability.RecordTxFailed("timeout")
			return sig, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		default:
			observability.RecordTxFailed("send_error")
			return sig, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}
	observability.RecordTxConfirmed()
	return sig, nil
}

// invalidate drops the cache entries the mutation touched. The ledger is
// authoritative: invalidation happens even when index sync later fails.
func (w *Writer) invalidate(ctx context.Context, propertyPDA, investor string) {
	var err error
	if propertyPDA != "" {
		err = w.invalidator.InvalidateProperty(ctx, propertyPDA)
	} else {
		err = w.invalidator.InvalidateAllProperties(ctx)
	}
	if err != nil {
		w.log.WithError(err).Warn("property invalidation failed")
	}
	if investor != "" {
		if err := w.invalidator.InvalidateInvestorInvestments(ctx, investor); err != nil {
			w.log.WithError(err).Warn("investor invalidation failed")
		}
	}
}

// syncProperty refetches the confirmed property and upserts it into the
// off-chain index. Best effort: failures are logged only.
func (w *Writer) syncProperty(pda string) {
	if w.properties == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), indexSyncTimeout)
	defer cancel()

	start := time.Now()
	p, err := w.ledger.FetchProperty(ctx, pda)
	if err != nil {
		w.log.WithError(err).WithField("property", pda).Warn("index sync: property refetch failed")
		return
	}
	err = w.properties.Upsert(ctx, p)
	observability.RecordDBQuery("postgres", "upsert_property", time.Since(start).Seconds(), err)
	if err != nil {
		w.log.WithError(err).WithField("property", pda).Warn("index sync: property upsert failed")
	}
}

// syncInvestment refetches the pair's investment account. A withdrawal
// closes the account; its index record is deleted instead.
func (w *Writer) syncInvestment(investor, propertyPDA string, withdrawal bool) {
	if w.investments == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), indexSyncTimeout)
	defer cancel()

	pda, _, err := w.ledger.InvestmentPDA(investor, propertyPDA)
	if err != nil {
		w.log.WithError(err).Warn("index sync: investment PDA derivation failed")
		return
	}

	start := time.Now()
	if withdrawal {
		err = w.investments.Delete(ctx, pda)
		observability.RecordDBQuery("postgres", "delete_investment", time.Since(start).Seconds(), err)
		if err != nil {
			w.log.WithError(err).WithField("investment", pda).Warn("index sync: investment delete failed")
		}
		return
	}

	inv, err := w.ledger.FetchInvestment(ctx, pda)
	if err != nil {
		w.log.WithError(err).WithField("investment", pda).Warn("index sync: investment refetch failed")
		return
	}
	err = w.investments.Upsert(ctx, inv)
	observability.RecordDBQuery("postgres", "upsert_investment", time.Since(start).Seconds(), err)
	if err != nil {
		w.log.WithError(err).WithField("investment", pda).Warn("index sync: investment upsert failed")
	}
}

// Package admin — service.go holds the allow-list check, the privileged
// account mutations, sequential broadcast fan-out and voucher issue/redeem
// logic including the argon2id code hashing.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"github.com/nanacinema/RCFINDER/internal/common"
)

// Accounts is the slice of the account service the admin surface needs.
type Accounts interface {
	AddCredits(ctx context.Context, userID int64, amount int64) error
	SetBlocked(ctx context.Context, userID int64, blocked bool) error
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// VoucherStore is what voucher issue/redeem needs from storage.
// *Repository is the production implementation.
type VoucherStore interface {
	CreateVoucher(ctx context.Context, codeHash string, credits, createdBy int64) (int64, error)
	GetVoucher(ctx context.Context, id int64) (*Voucher, error)
	MarkRedeemed(ctx context.Context, id, userID int64) (bool, error)
}

// Service implements the admin commands.
type Service struct {
	vouchers VoucherStore
	accounts Accounts
	admins   map[int64]struct{}
}

func NewService(vouchers VoucherStore, accounts Accounts, adminIDs []int64) *Service {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Service{
		vouchers: vouchers,
		accounts: accounts,
		admins:   admins,
	}
}

// IsAdmin reports allow-list membership.
func (s *Service) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// AdminIDs returns the configured allow-list, for "contact an admin"
// replies and error notifications.
func (s *Service) AdminIDs() []int64 {
	out := make([]int64, 0, len(s.admins))
	for id := range s.admins {
		out = append(out, id)
	}
	return out
}

// AddCredits grants credits to the target user.
func (s *Service) AddCredits(ctx context.Context, targetID, amount int64) error {
	if amount == 0 {
		return common.ErrInvalidAmount
	}
	return s.accounts.AddCredits(ctx, targetID, amount)
}

// SetBlocked blocks or unblocks the target user.
func (s *Service) SetBlocked(ctx context.Context, targetID int64, blocked bool) error {
	return s.accounts.SetBlocked(ctx, targetID, blocked)
}

// Broadcast delivers text to every known user, strictly sequentially,
// tolerating per-recipient failure (e.g. the recipient blocked the bot).
// No retry, no backoff, no batching.
func (s *Service) Broadcast(ctx context.Context, text string, send func(userID int64, text string) error) (sent, failed int, err error) {
	ids, err := s.accounts.ListUserIDs(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		if err := send(id, "📣 Broadcast:\n\n"+text); err != nil {
			failed++
		} else {
			sent++
		}
	}
	log.WithFields(log.Fields{
		"sent":   sent,
		"failed": failed,
	}).Info("Broadcast finished")
	return sent, failed, nil
}

// CreateVoucher issues a one-shot top-up code worth the given credits and
// returns the printable code. Only the hash is stored.
func (s *Service) CreateVoucher(ctx context.Context, createdBy, credits int64) (string, error) {
	if credits <= 0 {
		return "", common.ErrInvalidAmount
	}

	secret, err := generateSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate voucher secret: %w", err)
	}

	hash, err := hashArgon2id(secret)
	if err != nil {
		return "", err
	}

	id, err := s.vouchers.CreateVoucher(ctx, hash, credits, createdBy)
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"voucher_id": id,
		"credits":    credits,
		"created_by": createdBy,
	}).Info("Voucher issued")

	return fmt.Sprintf("%s-%d-%s", codePrefix, id, secret), nil
}

// Redeem claims a voucher code for userID and credits the account.
// Returns the credited amount.
func (s *Service) Redeem(ctx context.Context, userID int64, code string) (int64, error) {
	id, secret, err := parseCode(code)
	if err != nil {
		return 0, err
	}

	voucher, err := s.vouchers.GetVoucher(ctx, id)
	if err != nil {
		return 0, err
	}
	if !verifyArgon2id(secret, voucher.CodeHash) {
		return 0, common.ErrVoucherInvalid
	}
	if voucher.RedeemedBy != nil {
		return 0, common.ErrVoucherUsed
	}

	claimed, err := s.vouchers.MarkRedeemed(ctx, id, userID)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, common.ErrVoucherUsed
	}

	if err := s.accounts.AddCredits(ctx, userID, voucher.Credits); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"voucher_id": id,
		"user_id":    userID,
		"credits":    voucher.Credits,
	}).Info("Voucher redeemed")

	return voucher.Credits, nil
}

// parseCode splits RC-<id>-<secret> into its parts.
func parseCode(code string) (int64, string, error) {
	parts := strings.SplitN(strings.TrimSpace(code), "-", 3)
	if len(parts) != 3 || parts[0] != codePrefix || parts[2] == "" {
		return 0, "", common.ErrVoucherInvalid
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", common.ErrVoucherInvalid
	}
	return id, parts[2], nil
}

// --- Crypto helpers ---

// Argon2id parameters for voucher secrets.
const (
	argonMemory      uint32 = 65536 // 64 MB
	argonIterations  uint32 = 3
	argonParallelism uint8  = 2
	argonKeyLength   uint32 = 32
)

// generateSecret returns a random URL-safe secret for a voucher code.
func generateSecret() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashArgon2id hashes a secret in the standard encoded format:
// $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func hashArgon2id(secret string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(secret), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// verifyArgon2id checks a secret against an encoded argon2id hash in
// constant time.
func verifyArgon2id(secret, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Malformed argon2id hash in storage")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Failed to parse argon2id parameters")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Failed to decode argon2id salt")
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Failed to decode argon2id hash")
		return false
	}

	computed := argon2.IDKey([]byte(secret), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

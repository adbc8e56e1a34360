package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanacinema/RCFINDER/internal/common"
)

// fakeVouchers is an in-memory VoucherStore.
type fakeVouchers struct {
	nextID   int64
	vouchers map[int64]*Voucher
}

func newFakeVouchers() *fakeVouchers {
	return &fakeVouchers{nextID: 1, vouchers: make(map[int64]*Voucher)}
}

func (f *fakeVouchers) CreateVoucher(ctx context.Context, codeHash string, credits, createdBy int64) (int64, error) {
	id := f.nextID
	f.nextID++
	f.vouchers[id] = &Voucher{
		ID:        id,
		CodeHash:  codeHash,
		Credits:   credits,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (f *fakeVouchers) GetVoucher(ctx context.Context, id int64) (*Voucher, error) {
	v, ok := f.vouchers[id]
	if !ok {
		return nil, common.ErrVoucherInvalid
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVouchers) MarkRedeemed(ctx context.Context, id, userID int64) (bool, error) {
	v, ok := f.vouchers[id]
	if !ok || v.RedeemedBy != nil {
		return false, nil
	}
	now := time.Now()
	v.RedeemedBy = &userID
	v.RedeemedAt = &now
	return true, nil
}

// fakeAccounts records credit grants and block flips.
type fakeAccounts struct {
	credits map[int64]int64
	blocked map[int64]bool
	userIDs []int64
	listErr error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{credits: make(map[int64]int64), blocked: make(map[int64]bool)}
}

func (f *fakeAccounts) AddCredits(ctx context.Context, userID int64, amount int64) error {
	f.credits[userID] += amount
	return nil
}

func (f *fakeAccounts) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	f.blocked[userID] = blocked
	return nil
}

func (f *fakeAccounts) ListUserIDs(ctx context.Context) ([]int64, error) {
	return f.userIDs, f.listErr
}

func TestIsAdmin(t *testing.T) {
	svc := NewService(newFakeVouchers(), newFakeAccounts(), []int64{10, 20})

	assert.True(t, svc.IsAdmin(10))
	assert.True(t, svc.IsAdmin(20))
	assert.False(t, svc.IsAdmin(30))
}

func TestAddCreditsRejectsZero(t *testing.T) {
	accounts := newFakeAccounts()
	svc := NewService(newFakeVouchers(), accounts, nil)

	err := svc.AddCredits(context.Background(), 7, 0)
	require.ErrorIs(t, err, common.ErrInvalidAmount)

	require.NoError(t, svc.AddCredits(context.Background(), 7, 5))
	assert.Equal(t, int64(5), accounts.credits[7])

	// Negative amounts revoke
	require.NoError(t, svc.AddCredits(context.Background(), 7, -2))
	assert.Equal(t, int64(3), accounts.credits[7])
}

func TestBroadcastTallies(t *testing.T) {
	accounts := newFakeAccounts()
	accounts.userIDs = []int64{1, 2, 3, 4}
	svc := NewService(newFakeVouchers(), accounts, nil)

	var delivered []string
	sent, failed, err := svc.Broadcast(context.Background(), "maintenance tonight", func(userID int64, text string) error {
		if userID == 3 {
			return errors.New("bot was blocked by the user")
		}
		delivered = append(delivered, text)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, sent)
	assert.Equal(t, 1, failed)
	for _, text := range delivered {
		assert.Equal(t, "📣 Broadcast:\n\nmaintenance tonight", text)
	}
}

func TestBroadcastListFailure(t *testing.T) {
	accounts := newFakeAccounts()
	accounts.listErr = errors.New("db down")
	svc := NewService(newFakeVouchers(), accounts, nil)

	_, _, err := svc.Broadcast(context.Background(), "hi", func(int64, string) error { return nil })
	require.Error(t, err)
}

func TestVoucherRoundtrip(t *testing.T) {
	vouchers := newFakeVouchers()
	accounts := newFakeAccounts()
	svc := NewService(vouchers, accounts, []int64{10})

	code, err := svc.CreateVoucher(context.Background(), 10, 25)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "RC-"))

	// Only the hash is stored, never the secret.
	secret := code[strings.LastIndex(code, "-")+1:]
	for _, v := range vouchers.vouchers {
		assert.NotContains(t, v.CodeHash, secret)
		assert.True(t, strings.HasPrefix(v.CodeHash, "$argon2id$v=19$"))
	}

	amount, err := svc.Redeem(context.Background(), 7, code)
	require.NoError(t, err)
	assert.Equal(t, int64(25), amount)
	assert.Equal(t, int64(25), accounts.credits[7])
}

func TestVoucherDoubleRedeem(t *testing.T) {
	vouchers := newFakeVouchers()
	accounts := newFakeAccounts()
	svc := NewService(vouchers, accounts, nil)

	code, err := svc.CreateVoucher(context.Background(), 10, 25)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), 7, code)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), 8, code)
	require.ErrorIs(t, err, common.ErrVoucherUsed)
	assert.Zero(t, accounts.credits[8])
}

func TestVoucherWrongSecret(t *testing.T) {
	vouchers := newFakeVouchers()
	svc := NewService(vouchers, newFakeAccounts(), nil)

	code, err := svc.CreateVoucher(context.Background(), 10, 25)
	require.NoError(t, err)

	id := strings.SplitN(code, "-", 3)[1]
	_, err = svc.Redeem(context.Background(), 7, fmt.Sprintf("RC-%s-wrongsecret", id))
	require.ErrorIs(t, err, common.ErrVoucherInvalid)
}

func TestVoucherMalformedCodes(t *testing.T) {
	svc := NewService(newFakeVouchers(), newFakeAccounts(), nil)

	for _, code := range []string{"", "RC", "RC-", "RC-abc-xyz", "RC-0-xyz", "RC--xyz", "RC-1-", "XX-1-secret"} {
		_, err := svc.Redeem(context.Background(), 7, code)
		assert.ErrorIs(t, err, common.ErrVoucherInvalid, "code %q", code)
	}
}

func TestVoucherRejectsNonPositiveCredits(t *testing.T) {
	svc := NewService(newFakeVouchers(), newFakeAccounts(), nil)

	_, err := svc.CreateVoucher(context.Background(), 10, 0)
	require.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = svc.CreateVoucher(context.Background(), 10, -5)
	require.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestArgon2idVerify(t *testing.T) {
	hash, err := hashArgon2id("topsecret")
	require.NoError(t, err)

	assert.True(t, verifyArgon2id("topsecret", hash))
	assert.False(t, verifyArgon2id("topsecre", hash))
	assert.False(t, verifyArgon2id("topsecret", "$argon2id$broken"))
}

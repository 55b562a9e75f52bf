package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainerr "github.com/guestgate/guestgate/domain/error"
	"github.com/guestgate/guestgate/domain/entity"
	"github.com/guestgate/guestgate/domain/valueobject"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

type tokenRefresherMock struct {
	mock.Mock
}

func (m *tokenRefresherMock) Refresh(ctx context.Context, refreshToken string) (*valueobject.TokenPair, error) {
	args := m.Called(refreshToken)
	pair, _ := args.Get(0).(*valueobject.TokenPair)
	return pair, args.Error(1)
}

func TestCredentialRefresher_StartsEmpty(t *testing.T) {
	tokens := new(tokenRefresherMock)
	refresher := NewCredentialRefresher(tokens, "initial-refresh", clockwork.NewFakeClock(), logger.NewDiscardLogger())

	cred := refresher.Current()
	assert.Equal(t, entity.CredentialEmpty, cred.State())
	assert.Equal(t, "initial-refresh", cred.RefreshToken)
	assert.Empty(t, refresher.AccessToken())
	tokens.AssertNotCalled(t, "Refresh", mock.Anything)
}

func TestCredentialRefresher_RefreshSuccess(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC))
	tokens := new(tokenRefresherMock)
	tokens.On("Refresh", "initial-refresh").Return(valueobject.NewTokenPair("access-1", "refresh-1", 1209599), nil).Once()

	refresher := NewCredentialRefresher(tokens, "initial-refresh", clock, logger.NewDiscardLogger())

	require.NoError(t, refresher.Refresh(context.Background()))

	cred := refresher.Current()
	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Equal(t, "refresh-1", cred.RefreshToken)
	assert.Equal(t, clock.Now(), cred.LastRefreshedAt)
	assert.Equal(t, entity.CredentialValid, cred.State())
	assert.Equal(t, "access-1", refresher.AccessToken())
	tokens.AssertExpectations(t)
}

func TestCredentialRefresher_RotatesRefreshToken(t *testing.T) {
	tokens := new(tokenRefresherMock)
	tokens.On("Refresh", "initial-refresh").Return(valueobject.NewTokenPair("access-1", "refresh-1", 0), nil).Once()
	tokens.On("Refresh", "refresh-1").Return(valueobject.NewTokenPair("access-2", "refresh-2", 0), nil).Once()

	refresher := NewCredentialRefresher(tokens, "initial-refresh", clockwork.NewFakeClock(), logger.NewDiscardLogger())

	require.NoError(t, refresher.Refresh(context.Background()))
	require.NoError(t, refresher.Refresh(context.Background()))

	assert.Equal(t, "access-2", refresher.Current().AccessToken)
	assert.Equal(t, "refresh-2", refresher.Current().RefreshToken)
	tokens.AssertExpectations(t)
}

func TestCredentialRefresher_FailureLeavesStateUnchanged(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tokens := new(tokenRefresherMock)
	tokens.On("Refresh", "initial-refresh").Return(valueobject.NewTokenPair("access-1", "refresh-1", 0), nil).Once()
	tokens.On("Refresh", "refresh-1").Return(nil, errors.New("dial tcp: connection refused")).Once()

	refresher := NewCredentialRefresher(tokens, "initial-refresh", clock, logger.NewDiscardLogger())
	require.NoError(t, refresher.Refresh(context.Background()))
	before := refresher.Current()

	clock.Advance(24 * time.Hour)
	err := refresher.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, domainerr.IsCode(err, domainerr.ErrCodeRefreshFailed))

	assert.Equal(t, before, refresher.Current())
	tokens.AssertExpectations(t)
}

func TestCredentialRefresher_FailureFromEmpty(t *testing.T) {
	tokens := new(tokenRefresherMock)
	tokens.On("Refresh", "").Return(nil, errors.New("invalid_grant"))

	refresher := NewCredentialRefresher(tokens, "", clockwork.NewFakeClock(), logger.NewDiscardLogger())

	require.Error(t, refresher.Refresh(context.Background()))
	assert.Equal(t, entity.Credential{}, refresher.Current())
	assert.Equal(t, entity.CredentialEmpty, refresher.Current().State())
}

func TestCredentialRefresher_MalformedResponse(t *testing.T) {
	tokens := new(tokenRefresherMock)
	tokens.On("Refresh", "initial-refresh").Return(valueobject.NewTokenPair("", "refresh-1", 0), nil)

	refresher := NewCredentialRefresher(tokens, "initial-refresh", clockwork.NewFakeClock(), logger.NewDiscardLogger())

	err := refresher.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, domainerr.IsCode(err, domainerr.ErrCodeRefreshFailed))
	assert.Equal(t, entity.NewCredential("initial-refresh"), refresher.Current())
}

// rotatingRefresher hands out a new refresh token on every exchange and
// holds the first exchange until released.
type rotatingRefresher struct {
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	spent map[string]int
	calls int
}

func (f *rotatingRefresher) Refresh(ctx context.Context, refreshToken string) (*valueobject.TokenPair, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.spent[refreshToken]++
	f.mu.Unlock()

	if n == 1 {
		close(f.entered)
		<-f.release
	}
	return valueobject.NewTokenPair(fmt.Sprintf("access-%d", n), fmt.Sprintf("refresh-%d", n), 0), nil
}

func TestCredentialRefresher_ConcurrentRefreshNeverReusesRefreshToken(t *testing.T) {
	tokens := &rotatingRefresher{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		spent:   map[string]int{},
	}
	refresher := NewCredentialRefresher(tokens, "initial-refresh", clockwork.NewFakeClock(), logger.NewDiscardLogger())

	const callers = 8
	var done sync.WaitGroup
	errs := make(chan error, callers)
	call := func() {
		defer done.Done()
		errs <- refresher.Refresh(context.Background())
	}

	done.Add(1)
	go call()
	// the first exchange is in flight before anyone else calls
	<-tokens.entered

	for i := 1; i < callers; i++ {
		done.Add(1)
		go call()
	}
	close(tokens.release)
	done.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	// late callers may start a fresh exchange, but always with the rotated token
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	for token, n := range tokens.spent {
		assert.Equal(t, 1, n, "refresh token %s exchanged %d times", token, n)
	}
	assert.Equal(t, 1, tokens.spent["initial-refresh"])
	assert.LessOrEqual(t, tokens.calls, callers)
	assert.Equal(t, fmt.Sprintf("refresh-%d", tokens.calls), refresher.Current().RefreshToken)
}

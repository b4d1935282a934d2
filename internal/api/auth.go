package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/types"
)

const (
	CallerHeader    = "X-Caller"
	SignatureHeader = "X-Signature"
	// TimestampHeader carries the unix milliseconds at which the request was signed.
	TimestampHeader = "X-Timestamp"

	maxBodyBytes = 64 << 10
)

type callerKey struct{}

// SignedMessage is what a caller signs to authenticate a mutating request:
// the method, the request path, the signing time and the raw body.
func SignedMessage(method, path string, timestamp int64, body []byte) []byte {
	ts := strconv.FormatInt(timestamp, 10)
	msg := make([]byte, 0, len(method)+len(path)+len(ts)+3+len(body))
	msg = append(msg, method...)
	msg = append(msg, ' ')
	msg = append(msg, path...)
	msg = append(msg, '\n')
	msg = append(msg, ts...)
	msg = append(msg, '\n')
	return append(msg, body...)
}

// authenticator verifies signed requests. A signature is accepted once, and
// only while its timestamp is within window of the clock.
type authenticator struct {
	clock  clockwork.Clock
	window time.Duration

	mu   sync.Mutex
	seen map[solana.Signature]time.Time
}

func newAuthenticator(clock clockwork.Clock, window time.Duration) *authenticator {
	return &authenticator{
		clock:  clock,
		window: window,
		seen:   make(map[solana.Signature]time.Time),
	}
}

// middleware accepts a request only when X-Signature is a fresh ed25519
// signature by the X-Caller key over SignedMessage.
func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, r, types.NewErrorWithMsg(http.StatusRequestEntityTooLarge, types.BadRequest, "request body too large"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		caller, err := a.verify(r, body)
		if err != nil {
			writeError(w, r, types.NewError(http.StatusUnauthorized, types.Unauthenticated, err))
			return
		}

		logger := log.Ctx(r.Context()).With().Str("caller", caller.String()).Logger()
		ctx := context.WithValue(logger.WithContext(r.Context()), callerKey{}, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *authenticator) verify(r *http.Request, body []byte) (solana.PublicKey, error) {
	rawCaller := r.Header.Get(CallerHeader)
	rawSignature := r.Header.Get(SignatureHeader)
	rawTimestamp := r.Header.Get(TimestampHeader)
	if rawCaller == "" || rawSignature == "" || rawTimestamp == "" {
		return solana.PublicKey{}, errors.New("missing caller, signature or timestamp header")
	}

	caller, err := solana.PublicKeyFromBase58(rawCaller)
	if err != nil {
		return solana.PublicKey{}, errors.New("caller is not a valid public key")
	}
	signature, err := solana.SignatureFromBase58(rawSignature)
	if err != nil {
		return solana.PublicKey{}, errors.New("signature is not valid base58")
	}
	timestamp, err := strconv.ParseInt(rawTimestamp, 10, 64)
	if err != nil {
		return solana.PublicKey{}, errors.New("timestamp is not unix milliseconds")
	}

	now := a.clock.Now()
	signedAt := time.UnixMilli(timestamp)
	if skew := now.Sub(signedAt).Abs(); skew > a.window {
		return solana.PublicKey{}, fmt.Errorf("request was signed %s away from server time, window is %s", skew, a.window)
	}
	if !signature.Verify(caller, SignedMessage(r.Method, r.URL.Path, timestamp, body)) {
		return solana.PublicKey{}, errors.New("signature does not match the caller")
	}
	if !a.remember(signature, signedAt, now) {
		return solana.PublicKey{}, errors.New("signature was already used")
	}
	return caller, nil
}

// remember records signature until it leaves the window and reports whether
// it was new. Expired signatures are dropped on the way.
func (a *authenticator) remember(signature solana.Signature, signedAt, now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for sig, expiry := range a.seen {
		if now.After(expiry) {
			delete(a.seen, sig)
		}
	}
	if _, ok := a.seen[signature]; ok {
		return false
	}
	a.seen[signature] = signedAt.Add(a.window)
	return true
}

func callerFrom(ctx context.Context) solana.PublicKey {
	caller, _ := ctx.Value(callerKey{}).(solana.PublicKey)
	return caller
}

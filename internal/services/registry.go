package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/db/model"
	"github.com/solscore-labs/solscore-ledger/internal/types"
)

type GlobalParams struct {
	CurrentGameweek uint8
	SeasonStart     int64
	SeasonEnd       int64
	APIURL          string
}

func (p GlobalParams) validate() error {
	if len(p.APIURL) > model.MaxAPIURLLength {
		return types.NewValidationFailedError(
			types.InvalidGlobalParameter,
			fmt.Errorf("api url exceeds %d bytes", model.MaxAPIURLLength),
		)
	}
	if p.APIURL != "" {
		if _, err := url.ParseRequestURI(p.APIURL); err != nil {
			return types.NewValidationFailedError(types.InvalidGlobalParameter, fmt.Errorf("invalid api url: %w", err))
		}
	}
	if p.SeasonStart > p.SeasonEnd {
		return types.NewValidationFailedError(
			types.InvalidGlobalParameter,
			fmt.Errorf("season start %d is after season end %d", p.SeasonStart, p.SeasonEnd),
		)
	}
	return nil
}

// CreateGlobalConfig creates the season configuration. The caller becomes its admin.
func (s *Service) CreateGlobalConfig(ctx context.Context, caller solana.PublicKey, params GlobalParams) (*model.GlobalConfigDocument, error) {
	var doc *model.GlobalConfigDocument
	err := s.observe(ctx, "CreateGlobalConfig", func() error {
		if err := params.validate(); err != nil {
			return err
		}

		addr, err := derived(s.deriver.GlobalConfig())
		if err != nil {
			return err
		}

		doc = &model.GlobalConfigDocument{
			ID:              addr.Address.String(),
			Admin:           caller.String(),
			CurrentGameweek: params.CurrentGameweek,
			SeasonStart:     params.SeasonStart,
			SeasonEnd:       params.SeasonEnd,
			APIURL:          params.APIURL,
			Bump:            addr.Bump,
		}
		return s.commit(ctx, db.NewBatch().Insert(doc))
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("admin", caller.String()).Msg("global config created")
	return doc, nil
}

func (s *Service) GetGlobalConfig(ctx context.Context) (*model.GlobalConfigDocument, error) {
	addr, err := derived(s.deriver.GlobalConfig())
	if err != nil {
		return nil, err
	}
	return load(ctx, s.db.GetGlobalConfig, addr.Address, "global config")
}

// RegisterUser creates the caller's user record. Scores start at zero and are
// written by the score feed afterwards.
func (s *Service) RegisterUser(ctx context.Context, caller solana.PublicKey, fplID string) (*model.UserDocument, error) {
	var doc *model.UserDocument
	err := s.observe(ctx, "RegisterUser", func() error {
		if n := len(fplID); n == 0 || n > model.MaxFplIDLength {
			return types.NewValidationFailedError(
				types.InvalidFplId,
				fmt.Errorf("fpl id must be 1 to %d bytes, got %d", model.MaxFplIDLength, n),
			)
		}

		if _, err := s.GetGlobalConfig(ctx); err != nil {
			return err
		}

		addr, err := derived(s.deriver.User(caller))
		if err != nil {
			return err
		}

		doc = &model.UserDocument{
			ID:          addr.Address.String(),
			Authority:   caller.String(),
			FplID:       fplID,
			TeamData:    []byte{},
			LastUpdated: s.now(),
			Bump:        addr.Bump,
		}
		return s.commit(ctx, db.NewBatch().Insert(doc))
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("owner", caller.String()).
		Str("fpl_id", fplID).
		Msg("user registered")
	return doc, nil
}

// GetUserRecord is the read-only score lookup consumed by the reward engine.
func (s *Service) GetUserRecord(ctx context.Context, owner solana.PublicKey) (*model.UserDocument, error) {
	addr, err := derived(s.deriver.User(owner))
	if err != nil {
		return nil, err
	}
	return load(ctx, s.db.GetUser, addr.Address, "user record")
}

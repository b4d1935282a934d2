package api

import (
	"net/http"

	"github.com/gagliardetto/solana-go"

	"github.com/solscore-labs/solscore-ledger/internal/services"
	"github.com/solscore-labs/solscore-ledger/internal/types"
)

type createGlobalConfigRequest struct {
	CurrentGameweek uint8  `json:"currentGameweek"`
	SeasonStart     int64  `json:"seasonStart"`
	SeasonEnd       int64  `json:"seasonEnd"`
	APIURL          string `json:"apiUrl"`
}

type registerUserRequest struct {
	FplID string `json:"fplId"`
}

type createStakeConfigRequest struct {
	MinStakeAmount     uint64   `json:"minStakeAmount"`
	MaxStakeAmount     uint64   `json:"maxStakeAmount"`
	EarlyWithdrawalFee uint8    `json:"earlyWithdrawalFee"`
	LockOptions        []uint64 `json:"lockOptions"`
}

type stakeRequest struct {
	Amount     uint64 `json:"amount"`
	LockPeriod uint64 `json:"lockPeriod"`
}

type createRewardConfigRequest struct {
	BaseAPY               uint8  `json:"baseApy"`
	ScoreMultiplier       uint8  `json:"scoreMultiplier"`
	DistributionFrequency uint64 `json:"distributionFrequency"`
}

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

type createTreasuryRequest struct {
	ProtocolFee       uint8 `json:"protocolFee"`
	ReservePercentage uint8 `json:"reservePercentage"`
}

type withdrawTreasuryRequest struct {
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
}

type updateTreasuryConfigRequest struct {
	ProtocolFee       *uint8 `json:"protocolFee"`
	ReservePercentage *uint8 `json:"reservePercentage"`
}

func (s *Server) healthcheck(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		writeError(w, r, types.NewError(http.StatusServiceUnavailable, types.InternalServiceError, err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createGlobalConfig(w http.ResponseWriter, r *http.Request) {
	var req createGlobalConfigRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.CreateGlobalConfig(r.Context(), callerFrom(r.Context()), services.GlobalParams{
		CurrentGameweek: req.CurrentGameweek,
		SeasonStart:     req.SeasonStart,
		SeasonEnd:       req.SeasonEnd,
		APIURL:          req.APIURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newGlobalConfigView(doc))
}

func (s *Server) getGlobalConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.GetGlobalConfig(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newGlobalConfigView(doc))
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.RegisterUser(r.Context(), callerFrom(r.Context()), req.FplID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newUserView(doc))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	owner, err := pathKey(r, "owner")
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.GetUserRecord(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newUserView(doc))
}

func (s *Server) createStakeConfig(w http.ResponseWriter, r *http.Request) {
	var req createStakeConfigRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.CreateStakeConfig(r.Context(), callerFrom(r.Context()), services.StakeParams{
		MinStakeAmount:     req.MinStakeAmount,
		MaxStakeAmount:     req.MaxStakeAmount,
		EarlyWithdrawalFee: req.EarlyWithdrawalFee,
		LockOptions:        req.LockOptions,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newStakeConfigView(doc))
}

func (s *Server) stake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.Stake(r.Context(), callerFrom(r.Context()), req.Amount, req.LockPeriod)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newStakeView(doc))
}

func (s *Server) getStake(w http.ResponseWriter, r *http.Request) {
	address, err := pathKey(r, "address")
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.GetStake(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newStakeView(doc))
}

func (s *Server) listStakes(w http.ResponseWriter, r *http.Request) {
	owner, err := pathKey(r, "owner")
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := s.svc.ListStakes(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]StakeView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, newStakeView(doc))
	}
	writeJSON(w, r, http.StatusOK, views)
}

func (s *Server) unstake(w http.ResponseWriter, r *http.Request) {
	address, err := pathKey(r, "address")
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.svc.Unstake(r.Context(), callerFrom(r.Context()), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, UnstakeView{
		Stake:    newStakeView(result.Stake),
		Returned: result.Returned,
		Fee:      result.Fee,
	})
}

func (s *Server) claimRewards(w http.ResponseWriter, r *http.Request) {
	address, err := pathKey(r, "address")
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.svc.ClaimRewards(r.Context(), callerFrom(r.Context()), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ClaimView{
		Stake:  newStakeView(result.Stake),
		Reward: result.Reward,
	})
}

func (s *Server) previewRewards(w http.ResponseWriter, r *http.Request) {
	address, err := pathKey(r, "address")
	if err != nil {
		writeError(w, r, err)
		return
	}

	preview, err := s.svc.PreviewRewards(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, RewardPreviewView{
		Reward:      preview.Reward,
		Now:         preview.Now,
		ClaimableAt: preview.ClaimableAt,
	})
}

func (s *Server) createRewardConfig(w http.ResponseWriter, r *http.Request) {
	var req createRewardConfigRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.CreateRewardConfig(r.Context(), callerFrom(r.Context()), services.RewardParams{
		BaseAPY:               req.BaseAPY,
		ScoreMultiplier:       req.ScoreMultiplier,
		DistributionFrequency: req.DistributionFrequency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newRewardConfigView(doc))
}

func (s *Server) createRewardPool(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.CreateRewardPool(r.Context(), callerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newRewardPoolView(doc))
}

func (s *Server) fundRewardPool(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.FundRewardPool(r.Context(), callerFrom(r.Context()), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newRewardPoolView(doc))
}

func (s *Server) getRewardPool(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.GetRewardPool(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newRewardPoolView(doc))
}

func (s *Server) createTreasury(w http.ResponseWriter, r *http.Request) {
	var req createTreasuryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.CreateTreasury(r.Context(), callerFrom(r.Context()), services.TreasuryParams{
		ProtocolFee:       req.ProtocolFee,
		ReservePercentage: req.ReservePercentage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newTreasuryView(doc))
}

func (s *Server) depositTreasury(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.DepositTreasury(r.Context(), callerFrom(r.Context()), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newTreasuryView(doc))
}

func (s *Server) withdrawTreasury(w http.ResponseWriter, r *http.Request) {
	var req withdrawTreasuryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		writeError(w, r, badRequest("recipient is not a valid public key"))
		return
	}

	view, err := s.svc.WithdrawTreasury(r.Context(), callerFrom(r.Context()), req.Amount, recipient)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newTreasuryBalanceView(view))
}

func (s *Server) updateTreasuryConfig(w http.ResponseWriter, r *http.Request) {
	var req updateTreasuryConfigRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := s.svc.UpdateTreasuryConfig(r.Context(), callerFrom(r.Context()), req.ProtocolFee, req.ReservePercentage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newTreasuryView(doc))
}

func (s *Server) getTreasury(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.GetTreasury(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newTreasuryBalanceView(view))
}

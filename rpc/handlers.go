package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"

	"github.com/holiman/uint256"

	"watch2give/core/types"
	"watch2give/crypto"
	"watch2give/observability/logging"
	"watch2give/proof"
)

type methodHandler func(http.ResponseWriter, *http.Request, *RPCRequest)

func (s *Server) methods() map[string]methodHandler {
	return map[string]methodHandler{
		"w2g_mintAdToken":        s.handleMintAdToken,
		"w2g_burnAdToken":        s.handleBurnAdToken,
		"w2g_getAdTokenBalance":  s.handleGetAdTokenBalance,
		"w2g_donateTokens":       s.handleDonateTokens,
		"w2g_submitProof":        s.handleSubmitProof,
		"w2g_submitProofContent": s.handleSubmitProofContent,
		"w2g_getProof":           s.handleGetProof,
		"w2g_stake":              s.handleStake,
		"w2g_getStake":           s.handleGetStake,
		"w2g_getDonationCount":   s.handleGetDonationCount,
		"w2g_getRewardTier":      s.handleGetRewardTier,
		"w2g_call":               s.handleCall,
		"w2g_stateRoot":          s.handleStateRoot,
	}
}

func decodeParams(req *RPCRequest, dst interface{}) *RPCError {
	if len(req.Params) != 1 {
		return &RPCError{Code: codeInvalidParams, Message: "expected a single parameter object"}
	}
	decoder := json.NewDecoder(bytes.NewReader(req.Params[0]))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: "invalid parameter object", Data: err.Error()}
	}
	return nil
}

func parseAccount(field, value string) (crypto.AccountID, *RPCError) {
	if strings.TrimSpace(value) == "" {
		return crypto.AccountID{}, &RPCError{Code: codeInvalidParams, Message: field + " required"}
	}
	id, err := crypto.ParseAccountID(value)
	if err != nil {
		return crypto.AccountID{}, &RPCError{Code: codeInvalidParams, Message: "invalid " + field, Data: err.Error()}
	}
	return id, nil
}

func parseValue(raw string) (*uint256.Int, *RPCError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return new(uint256.Int), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, &RPCError{Code: codeInvalidParams, Message: "value must be a non-negative decimal integer"}
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, &RPCError{Code: codeInvalidParams, Message: "value exceeds 256 bits"}
	}
	return value, nil
}

func writeRPCError(w http.ResponseWriter, req *RPCRequest, rpcErr *RPCError) {
	status := http.StatusBadRequest
	if rpcErr.Code == codeUnauthorized {
		status = http.StatusUnauthorized
	}
	writeError(w, status, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
}

// caller authenticates a mutating request.
func (s *Server) caller(w http.ResponseWriter, r *http.Request, req *RPCRequest) (crypto.AccountID, bool) {
	id, rpcErr := s.auth.Caller(r)
	if rpcErr != nil {
		s.logger.Warn("rejected RPC credentials",
			slog.String("method", req.Method),
			slog.String("request_id", requestIDFrom(r.Context())),
			slog.String("source", s.proxies.clientSource(r)),
			slog.String("reason", rpcErr.Message),
			slog.String("authorization", logging.MaskCredential(r.Header.Get("Authorization"))))
		writeRPCError(w, req, rpcErr)
		return crypto.AccountID{}, false
	}
	return id, true
}

// optionalCaller is used by the messages the ledger leaves open to any caller.
// Without an Authorization header the call runs as the zero account; a
// header that fails verification is still rejected.
func (s *Server) optionalCaller(w http.ResponseWriter, r *http.Request, req *RPCRequest) (crypto.AccountID, bool) {
	if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
		return crypto.AccountID{}, true
	}
	return s.caller(w, r, req)
}

func (s *Server) writeReceipt(w http.ResponseWriter, r *http.Request, req *RPCRequest, receipt *types.Receipt, err error) {
	if err != nil {
		s.writeLedgerError(w, r, req, receipt, err)
		return
	}
	writeResult(w, req.ID, receiptResult(receipt))
}

func (s *Server) handleMintAdToken(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.optionalCaller(w, r, req)
	if !ok {
		return
	}
	var params AmountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	to, rpcErr := parseAccount("account", params.Account)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	receipt, err := s.ledger.MintAdToken(r.Context(), caller, to, params.Amount)
	s.writeReceipt(w, r, req, receipt, err)
}

func (s *Server) handleBurnAdToken(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.optionalCaller(w, r, req)
	if !ok {
		return
	}
	var params AmountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	from, rpcErr := parseAccount("account", params.Account)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	receipt, err := s.ledger.BurnAdToken(r.Context(), caller, from, params.Amount)
	s.writeReceipt(w, r, req, receipt, err)
}

func (s *Server) handleGetAdTokenBalance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params AccountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	user, rpcErr := parseAccount("account", params.Account)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	balance, err := s.ledger.AdTokenBalance(r.Context(), user)
	if err != nil {
		s.writeLedgerError(w, r, req, nil, err)
		return
	}
	writeResult(w, req.ID, BalanceResult{Account: user.String(), Balance: balance})
}

func (s *Server) handleDonateTokens(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params DonateParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	vendor, rpcErr := parseAccount("vendor", params.Vendor)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	receipt, err := s.ledger.DonateTokens(r.Context(), caller, vendor, params.Amount)
	s.writeReceipt(w, r, req, receipt, err)
}

func (s *Server) handleSubmitProof(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.optionalCaller(w, r, req)
	if !ok {
		return
	}
	var params SubmitProofParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	user, rpcErr := parseAccount("account", params.Account)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	hash, err := proof.ParseHash(params.Hash)
	if err != nil {
		writeRPCError(w, req, &RPCError{Code: codeInvalidParams, Message: "invalid hash", Data: err.Error()})
		return
	}
	receipt, err := s.ledger.SubmitProof(r.Context(), caller, user, hash)
	s.writeReceipt(w, r, req, receipt, err)
}

func (s *Server) handleSubmitProofContent(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.optionalCaller(w, r, req)
	if !ok {
		return
	}
	var params SubmitProofContentParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	user, rpcErr := parseAccount("account", params.Account)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	if len(params.Content) == 0 {
		writeRPCError(w, req, &RPCError{Code: codeInvalidParams, Message: "content required"})
		return
	}
	receipt, err := s.ledger.SubmitProof(r.Context(), caller, user, proof.HashContent(params.Content))
	s.writeReceipt(w, r, req, receipt, err)
}

func (s *Server) handleGetProof(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params AccountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	user, rpcErr := parseAccount("account", params.Account)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	hash, found, err := s.ledger.Proof(r.Context(), user)
	if err != nil {
		s.writeLedgerError(w, r, req, nil, err)
		return
	}
	result := ProofResult{Account: user.String(), Found: found}
	if found {
		result.Hash = hash.Hex()
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params StakeParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	value, rpcErr := parseValue(params.Value)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	receipt, err := s.ledger.Stake(r.Context(), caller, value)
	s.writeReceipt(w, r, req, receipt, err)
}

func (s *Server) handleGetStake(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params AccountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	user, rpcErr := parseAccount("account", params.Account)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	amount, err := s.ledger.StakeOf(r.Context(), user)
	if err != nil {
		s.writeLedgerError(w, r, req, nil, err)
		return
	}
	writeResult(w, req.ID, StakeResult{Account: user.String(), Amount: amount.ToBig()})
}

func (s *Server) handleGetDonationCount(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params PairParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	user, rpcErr := parseAccount("user", params.User)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	vendor, rpcErr := parseAccount("vendor", params.Vendor)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	count, err := s.ledger.DonationCount(r.Context(), user, vendor)
	if err != nil {
		s.writeLedgerError(w, r, req, nil, err)
		return
	}
	writeResult(w, req.ID, DonationCountResult{User: user.String(), Vendor: vendor.String(), Count: count})
}

func (s *Server) handleGetRewardTier(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params PairParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	user, rpcErr := parseAccount("user", params.User)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	vendor, rpcErr := parseAccount("vendor", params.Vendor)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	standing, err := s.ledger.RewardStanding(r.Context(), user, vendor)
	if err != nil {
		s.writeLedgerError(w, r, req, nil, err)
		return
	}
	writeResult(w, req.ID, RewardTierResult{
		User:          user.String(),
		Vendor:        vendor.String(),
		Count:         standing.Count,
		Eligible:      standing.Eligible(),
		Tier:          standing.Tier.Name,
		Threshold:     standing.Tier.Threshold,
		NextTier:      standing.Next.Name,
		NextThreshold: standing.Next.Threshold,
		Remaining:     standing.Remaining(),
	})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	caller, ok := s.caller(w, r, req)
	if !ok {
		return
	}
	var params CallParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	if len(params.Input) == 0 {
		writeRPCError(w, req, &RPCError{Code: codeInvalidParams, Message: "input required"})
		return
	}
	value, rpcErr := parseValue(params.Value)
	if rpcErr != nil {
		writeRPCError(w, req, rpcErr)
		return
	}
	receipt, err := s.ledger.Call(r.Context(), caller, value, params.Input)
	s.writeReceipt(w, r, req, receipt, err)
}

func (s *Server) handleStateRoot(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) > 0 {
		writeRPCError(w, req, &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf("%s takes no parameters", req.Method)})
		return
	}
	height, root := s.ledger.Head()
	writeResult(w, req.ID, StateRootResult{Height: height, Root: root.Hex()})
}

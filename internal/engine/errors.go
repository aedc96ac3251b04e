package engine

import (
	"errors"
	"fmt"
)

// Blocking conditions reported before a draw may start.
var (
	ErrNoScopeTarget        = errors.New("請先選擇分區或社團")
	ErrNoPrizeSelected      = errors.New("請先選擇一個獎項")
	ErrNoEligibleCandidates = errors.New("目前設定範圍內已無符合資格的參加者")
	ErrPrizeExhausted       = errors.New("獎項名額已全數抽出")
	// ErrInsufficientCandidates is never returned bare; see InsufficientCandidatesError.
	ErrInsufficientCandidates = errors.New("符合資格人數少於預計抽出人數")
)

// Lifecycle errors.
var (
	ErrAlreadyDrawing = errors.New("抽獎進行中")
	ErrNotDrawing     = errors.New("目前沒有進行中的抽獎")
)

// Ledger, catalog and roster errors.
var (
	ErrDuplicateRecord = errors.New("得獎紀錄編號重複")
	ErrAlreadyWon      = errors.New("參加者已在此層級得獎")
	ErrRecordNotFound  = errors.New("找不到得獎紀錄")
	ErrPrizeNotFound   = errors.New("指定的獎項不存在")
	ErrInvalidPrize    = errors.New("獎項設定無效")
	ErrInvalidRoster   = errors.New("參加者名單無效")
	ErrLedgerNotEmpty  = errors.New("已有得獎紀錄，請先清除得獎名單")
	ErrUnknownScope    = errors.New("未知的抽獎層級")
	ErrInvalidMode     = errors.New("抽獎模式無效")
)

// InsufficientCandidatesError reports that fewer participants are eligible
// than the draw asked for. It is recoverable: the caller confirms and the
// request is downgraded to Eligible.
type InsufficientCandidatesError struct {
	Eligible  int
	Requested int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("符合資格人數 (%d) 少於預計抽出人數 (%d)，是否全部抽出？", e.Eligible, e.Requested)
}

func (e *InsufficientCandidatesError) Is(target error) bool {
	return target == ErrInsufficientCandidates
}

// Code returns a stable machine-readable name for the blocking condition or
// domain error carried by err, or "" when err is not one of them.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

var codes = []struct {
	err  error
	code string
}{
	{ErrNoScopeTarget, "NO_SCOPE_TARGET"},
	{ErrNoPrizeSelected, "NO_PRIZE_SELECTED"},
	{ErrNoEligibleCandidates, "NO_ELIGIBLE_CANDIDATES"},
	{ErrPrizeExhausted, "PRIZE_EXHAUSTED"},
	{ErrInsufficientCandidates, "INSUFFICIENT_CANDIDATES"},
	{ErrAlreadyDrawing, "ALREADY_DRAWING"},
	{ErrNotDrawing, "NOT_DRAWING"},
	{ErrDuplicateRecord, "DUPLICATE_RECORD"},
	{ErrAlreadyWon, "ALREADY_WON"},
	{ErrRecordNotFound, "RECORD_NOT_FOUND"},
	{ErrPrizeNotFound, "PRIZE_NOT_FOUND"},
	{ErrInvalidPrize, "INVALID_PRIZE"},
	{ErrInvalidRoster, "INVALID_ROSTER"},
	{ErrLedgerNotEmpty, "LEDGER_NOT_EMPTY"},
	{ErrUnknownScope, "UNKNOWN_SCOPE"},
	{ErrInvalidMode, "INVALID_MODE"},
}

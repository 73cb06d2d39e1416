package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnreachable reports a transport-level failure (dial, timeout, bad HTTP
// status) talking to the approval endpoint. Callers must treat it as
// retryable and must not mutate any state: the gateway may or may not have
// seen the request.
var ErrUnreachable = errors.New("approval gateway unreachable")

// ReplyKind tags how the approval response body was decoded. The vendor
// answers with JSON on some routes and url-encoded text on others.
type ReplyKind int

const (
	ReplyStructured ReplyKind = iota
	ReplyFormEncoded
	ReplyUnparseable
)

// ApprovalReply is the normalized approval response: whichever wire format
// came back, Fields carries the flat key/value view of it.
type ApprovalReply struct {
	Kind   ReplyKind
	Fields map[string]string
}

// ResultCode returns the business result code of the approval, empty when the
// body was unparseable.
func (r ApprovalReply) ResultCode() string { return r.Fields["ResultCode"] }

func (r ApprovalReply) ResultMsg() string { return r.Fields["ResultMsg"] }

// ApprovalRequest carries the first-phase callback fields needed to assemble
// the second-phase server-to-server call.
type ApprovalRequest struct {
	TID         string
	AuthToken   string
	Amount      string
	ApprovalURL string
}

// Requester performs the second-phase approval call. The HTTP client is
// injected so tests can substitute a fake transport; its timeout is the only
// cancellation boundary of the callback path.
type Requester struct {
	client         *http.Client
	merchantID     string
	merchantSecret string
	now            func() time.Time
}

func NewRequester(client *http.Client, merchantID, merchantSecret string) *Requester {
	return &Requester{
		client:         client,
		merchantID:     merchantID,
		merchantSecret: merchantSecret,
		now:            time.Now,
	}
}

// Approve issues exactly one form-encoded approval request, minting a fresh
// ediDate and signature for this attempt. Safe to call repeatedly for the
// same order: replay protection lives in the order ledger, not here.
func (rq *Requester) Approve(ctx context.Context, req ApprovalRequest) (ApprovalReply, error) {
	if err := ValidateAmount(req.Amount); err != nil {
		return ApprovalReply{}, err
	}

	ediDate := EDIDate(rq.now())
	form := url.Values{}
	form.Set("TID", req.TID)
	form.Set("AuthToken", req.AuthToken)
	form.Set("MID", rq.merchantID)
	form.Set("Amt", req.Amount)
	form.Set("EdiDate", ediDate)
	form.Set("CharSet", "utf-8")
	form.Set("SignData", Signature(req.AuthToken, rq.merchantID, req.Amount, ediDate, rq.merchantSecret))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.ApprovalURL, strings.NewReader(form.Encode()))
	if err != nil {
		return ApprovalReply{}, fmt.Errorf("build approval request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := rq.client.Do(httpReq)
	if err != nil {
		return ApprovalReply{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ApprovalReply{}, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return ApprovalReply{}, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}
	return parseReply(body), nil
}

// parseReply tries structured JSON first and falls back to url-encoded form
// decoding; the result is resolved once and consumed uniformly by callers.
func parseReply(body []byte) ApprovalReply {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err == nil {
		fields := make(map[string]string, len(m))
		for k, v := range m {
			fields[k] = fmt.Sprintf("%v", v)
		}
		return ApprovalReply{Kind: ReplyStructured, Fields: fields}
	}

	if vals, err := url.ParseQuery(strings.TrimSpace(string(body))); err == nil && len(vals) > 0 {
		fields := make(map[string]string, len(vals))
		ok := false
		for k := range vals {
			fields[k] = vals.Get(k)
			if vals.Get(k) != "" {
				ok = true
			}
		}
		if ok {
			return ApprovalReply{Kind: ReplyFormEncoded, Fields: fields}
		}
	}
	return ApprovalReply{Kind: ReplyUnparseable, Fields: map[string]string{}}
}

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultVerifierURL is the local contract verifier endpoint.
const DefaultVerifierURL = "http://localhost:8888/v2/score/verify"

// VerifyResponse is the verifier's HTTP reply.
type VerifyResponse struct {
	Status int
	Body   []byte
}

// Verifier submits deploys to a contract verification service.
type Verifier struct {
	url    string
	client *http.Client
}

// NewVerifier creates a verifier client posting to url.
func NewVerifier(url string) *Verifier {
	if url == "" {
		url = DefaultVerifierURL
	}
	return &Verifier{url: url, client: &http.Client{Timeout: 60 * time.Second}}
}

// Verify asks the service to verify the deploy in deployTx on network.
func (v *Verifier) Verify(ctx context.Context, deployTx, network string) (*VerifyResponse, error) {
	body, err := json.Marshal(map[string]string{
		"deployTxHash": deployTx,
		"network":      network,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verifier request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read verifier response: %w", err)
	}
	return &VerifyResponse{Status: resp.StatusCode, Body: data}, nil
}

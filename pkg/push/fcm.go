package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultFCMEndpoint = "https://fcm.googleapis.com/fcm/send"

// FCMClient talks to the FCM device-message HTTP API. One Send call
// covers the whole token batch; FCM reports a result per token.
type FCMClient struct {
	endpoint  string
	serverKey string
	hc        *http.Client
}

func NewFCMClient(endpoint, serverKey string) *FCMClient {
	if endpoint == "" {
		endpoint = DefaultFCMEndpoint
	}
	return &FCMClient{
		endpoint:  endpoint,
		serverKey: serverKey,
		hc:        &http.Client{Timeout: 15 * time.Second},
	}
}

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    Notification      `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (c *FCMClient) Send(ctx context.Context, tokens []string, note Notification, data map[string]string) (*BatchResult, error) {
	body, err := json.Marshal(fcmRequest{
		RegistrationIDs: tokens,
		Notification:    note,
		Data:            data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal fcm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fcm send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read fcm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fcm send: status %d: %s", resp.StatusCode, raw)
	}

	var fr fcmResponse
	if err := json.Unmarshal(raw, &fr); err != nil {
		return nil, fmt.Errorf("decode fcm response: %w", err)
	}

	out := &BatchResult{Success: fr.Success, Failure: fr.Failure}
	for i, r := range fr.Results {
		tr := TokenResult{MessageID: r.MessageID, Error: r.Error}
		if i < len(tokens) {
			tr.Token = tokens[i]
		}
		out.Results = append(out.Results, tr)
	}
	return out, nil
}

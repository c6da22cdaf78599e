package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MaxAnswerBytes caps how much of a participant's reply is read. Longer
// replies are cut and flagged as Truncated.
const MaxAnswerBytes = 64 << 10

// Reply is what a participant server sent back for one challenge.
type Reply struct {
	StatusCode int
	Status     string
	Body       string
	Truncated  bool
}

// OK reports whether the reply carries a candidate answer.
func (r Reply) OK() bool {
	return r.StatusCode == http.StatusOK
}

// ParticipantClient sends challenges to participant answer servers. A
// participant is asked with GET <endpoint>?q=<challenge text>.
type ParticipantClient struct {
	client *http.Client
}

// NewParticipantClient creates a client. A zero timeout leaves only the
// transport defaults in place.
func NewParticipantClient(timeout time.Duration) *ParticipantClient {
	return &ParticipantClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Ask sends text to endpoint. A non-nil error means the request never
// completed; any HTTP status, including errors, comes back as a Reply.
func (c *ParticipantClient) Ask(ctx context.Context, endpoint, text string) (Reply, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return Reply{}, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	query := u.Query()
	query.Set("q", text)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxAnswerBytes+1))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to read response body: %w", err)
	}

	reply := Reply{StatusCode: resp.StatusCode, Status: resp.Status}
	if len(body) > MaxAnswerBytes {
		body = body[:MaxAnswerBytes]
		reply.Truncated = true
	}
	reply.Body = string(body)
	return reply, nil
}

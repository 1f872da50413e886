package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type Message struct {
	Content string `json:"content"`
}

// Messager posts short status lines to a Discord compatible webhook.
type Messager struct {
	BaseURL     string
	NetworkName string

	notify bool
	client *http.Client
}

func NewMessager(baseURL, networkName string, notify bool) *Messager {
	return &Messager{
		BaseURL:     baseURL,
		NetworkName: networkName,
		notify:      notify && baseURL != "",
		client:      http.DefaultClient,
	}
}

func (b *Messager) Notify(ctx context.Context, message string) error {
	return b.send(ctx, fmt.Sprintf("[%s] %s", b.NetworkName, message))
}

func (b *Messager) NotifyWarning(ctx context.Context, errorMessage error) error {
	return b.send(ctx, fmt.Sprintf("[%s] warning: %s", b.NetworkName, errorMessage.Error()))
}

func (b *Messager) NotifyError(ctx context.Context, errorMessage error) error {
	return b.send(ctx, fmt.Sprintf("[%s] error: %s", b.NetworkName, errorMessage.Error()))
}

func (b *Messager) send(ctx context.Context, content string) error {
	if !b.notify {
		return nil
	}

	data, err := json.Marshal(Message{Content: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	// discord answers 204 on success
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.New("error sending message")
	}

	return nil
}

package client

import (
	"encoding/json"
	"net/url"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/cellentry/pkg/cell"
	"github.com/charlie0129/cellentry/pkg/config"
	"github.com/charlie0129/cellentry/pkg/session"
	"github.com/charlie0129/cellentry/pkg/types"
)

func sessionPath(id string, rest string) string {
	return "/sessions/" + url.PathEscape(id) + rest
}

func decodeJSON[T any](ret string, what string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return v, pkgerrors.Wrapf(err, "failed to unmarshal %s", what)
	}
	return v, nil
}

func (c *Client) CreateSession() (*types.SessionInfo, error) {
	ret, err := c.Post("/sessions", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create session")
	}
	info, err := decodeJSON[types.SessionInfo](ret, "session")
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ListSessions() ([]string, error) {
	ret, err := c.Get("/sessions")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list sessions")
	}
	return decodeJSON[[]string](ret, "session list")
}

func (c *Client) GetSession(id string) (*types.SessionInfo, error) {
	ret, err := c.Get(sessionPath(id, ""))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get session %s", id)
	}
	info, err := decodeJSON[types.SessionInfo](ret, "session")
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) DeleteSession(id string) error {
	if _, err := c.Delete(sessionPath(id, "")); err != nil {
		return pkgerrors.Wrapf(err, "failed to delete session %s", id)
	}
	return nil
}

func (c *Client) ResetSession(id string) error {
	if _, err := c.Post(sessionPath(id, "/reset"), ""); err != nil {
		return pkgerrors.Wrapf(err, "failed to reset session %s", id)
	}
	return nil
}

// Register submits the chemistry labels of a session. count must be within
// [cell.MinCount, cell.MaxCount]; it is checked here before anything is sent.
func (c *Client) Register(id string, labels []string, count int) ([]*cell.Spec, error) {
	if err := cell.ValidateCount(count); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(types.RegisterRequest{Labels: labels, Count: count})
	if err != nil {
		return nil, err
	}
	ret, err := c.Put(sessionPath(id, "/cells"), string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to register cells")
	}
	return decodeJSON[[]*cell.Spec](ret, "cells")
}

func (c *Client) SetCurrent(id, key string, current float64) (*cell.Spec, error) {
	if err := cell.ValidateCurrent(current); err != nil {
		return nil, err
	}

	ret, err := c.Put(sessionPath(id, "/cells/"+url.PathEscape(key)+"/current"), strconv.FormatFloat(current, 'f', -1, 64))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to set current of %s", key)
	}
	sp, err := decodeJSON[cell.Spec](ret, "cell")
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (c *Client) GetCells(id string) ([]*cell.Spec, error) {
	ret, err := c.Get(sessionPath(id, "/cells"))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get cells")
	}
	return decodeJSON[[]*cell.Spec](ret, "cells")
}

func (c *Client) GetSummary(id string) (*session.Summary, error) {
	ret, err := c.Get(sessionPath(id, "/summary"))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get summary")
	}
	sum, err := decodeJSON[session.Summary](ret, "summary")
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// Export returns the CSV export of a session.
func (c *Client) Export(id string) ([]byte, error) {
	ret, err := c.Get(sessionPath(id, "/export"))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to export cells")
	}
	return []byte(ret), nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}
	conf, err := decodeJSON[config.RawFileConfig](ret, "config")
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Client) SetCarryOverCurrents(enabled bool) (string, error) {
	return c.Put("/config/carry-over-currents", strconv.FormatBool(enabled))
}

func (c *Client) SetDefaultCellCount(n int) (string, error) {
	return c.Put("/config/default-cell-count", strconv.Itoa(n))
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	return decodeJSON[string](ret, "version")
}

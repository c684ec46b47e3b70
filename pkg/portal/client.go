package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/upm-go/upm/pkg/model"
)

const defaultBaseURL = "https://online.uestc.edu.cn/site"

// Options configure the HTTP portal client.
type Options struct {
	BaseURL    string
	Username   string
	Password   string
	LoginType  string // password or wechat
	CookieFile string
}

// HTTPClient talks to the campus utility portal over HTTP with a
// cookie-jar session.
type HTTPClient struct {
	opts   Options
	client *http.Client
}

// New creates a portal client.
func New(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &HTTPClient{
		opts: opts,
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Login establishes a session. For password logins the credentials are
// posted to the portal; for wechat logins the session cookies are imported
// from the configured cookie file, since that flow cannot run headless.
func (c *HTTPClient) Login(ctx context.Context) error {
	if c.opts.LoginType == "wechat" {
		if err := c.loadCookies(); err != nil {
			return &LoginError{Err: err}
		}
		return nil
	}

	form := url.Values{}
	form.Set("username", c.opts.Username)
	form.Set("password", c.opts.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return &LoginError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return &LoginError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &LoginError{Err: fmt.Errorf("login returned status %d", resp.StatusCode)}
	}

	if c.opts.CookieFile != "" {
		if err := c.saveCookies(); err != nil {
			// Session is live even if the cookie cache could not be written.
			return nil
		}
	}
	return nil
}

// FetchBalance retrieves the current power balance for the bound room.
func (c *HTTPClient) FetchBalance(ctx context.Context) (*model.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/bedroom", nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &FetchError{Err: ErrSessionExpired}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Err: fmt.Errorf("portal returned status %d", resp.StatusCode)}
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if envelope.Error != 0 {
		return nil, &FetchError{Err: fmt.Errorf("portal error %d: %s", envelope.Error, envelope.Message)}
	}
	if envelope.Data == nil {
		return nil, &FetchError{Err: fmt.Errorf("portal returned no data: %s", envelope.Message)}
	}

	return envelope.Data.toReading()
}

// apiResponse is the portal's JSON envelope.
type apiResponse struct {
	Error   int        `json:"e"`
	Message string     `json:"m"`
	Data    *powerInfo `json:"d"`
}

// powerInfo mirrors the portal payload. The balance fields arrive as
// strings and are coerced to floats.
type powerInfo struct {
	RemainingEnergy string `json:"sydl"`
	RemainingMoney  string `json:"syje"`
	MeterRoomID     string `json:"dffjbh"`
	RoomDisplayName string `json:"roomName"`
	RoomID          string `json:"roomId"`
	BuildingID      string `json:"buiId"`
	CampusID        string `json:"areaid"`
	RoomNumber      string `json:"fjh"`
}

func (p *powerInfo) toReading() (*model.Reading, error) {
	energy, err := strconv.ParseFloat(p.RemainingEnergy, 64)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("parse remaining energy %q: %w", p.RemainingEnergy, err)}
	}
	money, err := strconv.ParseFloat(p.RemainingMoney, 64)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("parse remaining money %q: %w", p.RemainingMoney, err)}
	}
	return &model.Reading{
		RemainingEnergy: energy,
		RemainingMoney:  money,
		MeterRoomID:     p.MeterRoomID,
		RoomDisplayName: p.RoomDisplayName,
		RoomID:          p.RoomID,
		BuildingID:      p.BuildingID,
		CampusID:        p.CampusID,
		RoomNumber:      p.RoomNumber,
		CapturedAt:      time.Now().UTC(),
	}, nil
}

func (c *HTTPClient) loadCookies() error {
	if c.opts.CookieFile == "" {
		return fmt.Errorf("wechat login requires cookie_file")
	}
	data, err := os.ReadFile(c.opts.CookieFile)
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}
	var cookies []*http.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("parse cookie file: %w", err)
	}
	base, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	c.client.Jar.SetCookies(base, cookies)
	return nil
}

func (c *HTTPClient) saveCookies() error {
	base, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return err
	}
	data, err := json.Marshal(c.client.Jar.Cookies(base))
	if err != nil {
		return err
	}
	return os.WriteFile(c.opts.CookieFile, data, 0o600)
}

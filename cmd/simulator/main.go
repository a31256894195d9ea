package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/models"
)

// Highway points around Delhi for realistic breakdown spots
var highways = []models.Location{
	{Latitude: 28.4595, Longitude: 77.0266, Address: "NH48, Gurugram"},
	{Latitude: 28.7041, Longitude: 77.1025, Address: "NH44, Delhi North"},
	{Latitude: 28.5355, Longitude: 77.3910, Address: "NH24, Noida"},
	{Latitude: 28.6692, Longitude: 77.4538, Address: "NH9, Ghaziabad"},
	{Latitude: 28.4089, Longitude: 77.3178, Address: "NH19, Faridabad"},
	{Latitude: 28.9845, Longitude: 77.7064, Address: "NH58, Meerut"},
}

var vehicleTypes = []models.VehicleType{
	models.VehicleCar, models.VehicleTruck, models.VehicleBike, models.VehicleBus, models.VehicleOther,
}

func jitterLocation(rng *rand.Rand, base models.Location, meters float64) models.Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Latitude*math.Pi/180)
	dLat := (rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rng.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Location{Latitude: base.Latitude + dLat, Longitude: base.Longitude + dLon}
}

func randomBreakdown(rng *rand.Rand) models.BreakdownInput {
	spot := jitterLocation(rng, highways[rng.IntN(len(highways))], 2000)
	issue := models.BreakdownIssues[rng.IntN(len(models.BreakdownIssues))]
	return models.BreakdownInput{
		VehicleType: vehicleTypes[rng.IntN(len(vehicleTypes))],
		IssueID:     issue.ID,
		Description: fmt.Sprintf("%s reported by simulator", issue.Name),
		Location:    &spot,
	}
}

// Client talks to the VehicleMate API as one driver.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return resp.StatusCode, fmt.Errorf("%s %s: status %d: %s", http.MethodPost, path, resp.StatusCode, apiErr.Error)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Login signs the driver in and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email string) (*models.User, error) {
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	if _, err := c.post(ctx, "/auth/login", models.LoginRequest{Email: email, Password: "simulator"}, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// ReportResult is the server's answer to a breakdown report.
type ReportResult struct {
	Data   models.BreakdownReport `json:"data"`
	Origin string                 `json:"origin"`
	Queued bool                   `json:"queued"`
}

// Report files a breakdown.
func (c *Client) Report(ctx context.Context, in models.BreakdownInput) (ReportResult, error) {
	var res ReportResult
	_, err := c.post(ctx, "/breakdowns", in, &res)
	return res, err
}

// SetOnline relays a connectivity change to the server.
func (c *Client) SetOnline(ctx context.Context, online bool) error {
	_, err := c.post(ctx, "/connectivity", map[string]bool{"online": online}, nil)
	return err
}

// Driver files breakdowns on a timer.
type Driver struct {
	Email string
	// OutageEvery flips connectivity off and back on every n reports; zero
	// never does.
	OutageEvery int

	client  *Client
	rng     *rand.Rand
	reports int
}

func (d *Driver) tick(ctx context.Context) {
	if d.OutageEvery > 0 && d.reports > 0 && d.reports%d.OutageEvery == 0 {
		if err := d.client.SetOnline(ctx, false); err != nil {
			log.WithError(err).Warn("Failed to simulate outage")
		}
		defer func() {
			if err := d.client.SetOnline(ctx, true); err != nil {
				log.WithError(err).Warn("Failed to end outage")
			}
		}()
	}

	res, err := d.client.Report(ctx, randomBreakdown(d.rng))
	if err != nil {
		log.WithError(err).WithField("driver", d.Email).Error("Failed to report breakdown")
		return
	}
	d.reports++
	log.WithFields(log.Fields{
		"driver":    d.Email,
		"report_id": res.Data.ID,
		"issue_id":  res.Data.IssueID,
		"queued":    res.Queued,
	}).Info("Reported breakdown")
}

// Run logs in and reports breakdowns every interval until ctx ends.
func (d *Driver) Run(ctx context.Context, interval time.Duration) error {
	user, err := d.client.Login(ctx, d.Email)
	if err != nil {
		return fmt.Errorf("login %s: %w", d.Email, err)
	}
	log.WithFields(log.Fields{"driver": d.Email, "user_id": user.ID}).Info("Driver signed in")

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			d.tick(ctx)
		}
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	drivers := envInt("SIM_DRIVERS", 3)
	interval := time.Duration(max(envInt("SIM_TICK_SECONDS", 5), 1)) * time.Second
	outageEvery := envInt("SIM_OUTAGE_EVERY", 0)

	log.WithFields(log.Fields{
		"drivers":  drivers,
		"api_url":  apiURL,
		"interval": interval,
	}).Info("Starting breakdown simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{}, drivers)
	for i := 0; i < drivers; i++ {
		d := &Driver{
			Email:       fmt.Sprintf("driver%d@vehiclemate.test", i+1),
			OutageEvery: outageEvery,
			client:      NewClient(apiURL),
			rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(i))),
		}
		go func() {
			defer func() { done <- struct{}{} }()
			if err := d.Run(ctx, interval); err != nil {
				log.WithError(err).Error("Driver stopped")
			}
		}()
	}

	for i := 0; i < drivers; i++ {
		<-done
	}
	log.Info("Simulation stopped")
}

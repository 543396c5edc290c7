// README: Smoke checks: infrastructure, quote correctness, access guard responses and quote throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"petlove/internal/infra"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Env: Redis connect (distance cache)",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: StatusSkip, Note: "use -apply-migration"}
				}
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				if err := infra.ApplyMigrations(ctx, r.db, r.cfg.MigrationsDir); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationsDir)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, table := range tables {
					var exists bool
					err := r.db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table).Scan(&exists)
					if err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: StatusFail, Note: "missing table " + table}
					}
				}
				return Result{Status: StatusPass, Note: fmt.Sprintf("%d tables", len(tables))}
			},
		},
		expectStatus("HTTP: health", http.MethodGet, base+"/health", nil, "", http.StatusOK),
		expectStatus("HTTP: metrics", http.MethodGet, base+"/metrics", nil, "", http.StatusOK),
		expectQuote("Quote: car 12.3 km, 3 small pets", base, map[string]any{
			"distance_km": 12.3, "vehicle_type": "Car", "pet_size": "Small", "pet_count": 3,
		}, 1050),
		expectQuote("Quote: motorcycle 20 km, 1 medium pet", base, map[string]any{
			"distance_km": 20, "vehicle_type": "Motorcycle", "pet_size": "Medium", "pet_count": 1,
		}, 550),
		expectQuote("Quote: car 71 km overflow band", base, map[string]any{
			"distance_km": 71, "vehicle_type": "Car", "pet_size": "Large", "pet_count": 2,
		}, 4600),
		expectStatus("Quote: zero distance rejected", http.MethodPost, base+"/api/quotes", map[string]any{
			"distance_km": 0, "vehicle_type": "Car", "pet_size": "Small", "pet_count": 1,
		}, "", http.StatusBadRequest),
		expectStatus("Capacity: motorcycle large", http.MethodGet, base+"/api/capacity?vehicle_type=Motorcycle&pet_size=Large", nil, "", http.StatusOK),
		expectStatus("Guard: bookings without token", http.MethodGet, base+"/api/bookings", nil, "", http.StatusUnauthorized),
		expectStatus("Guard: admin without token", http.MethodGet, base+"/api/admin/bookings", nil, "", http.StatusUnauthorized),
		{
			Name: "Guard: signed-in role",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.cfg.Token == "" {
					return Result{Status: StatusSkip, Note: "set PETLOVE_BENCH_TOKEN"}
				}
				status, latency, body, err := r.do(ctx, http.MethodGet, base+"/api/me", nil, r.cfg.Token)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				var me struct {
					Decision struct {
						Role   string `json:"role"`
						Source string `json:"source"`
					} `json:"decision"`
				}
				_ = json.Unmarshal(body, &me)
				return Result{Status: StatusPass, Latency: latency, Note: me.Decision.Role + " via " + me.Decision.Source}
			},
		},
		{
			Name: "Perf: quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/quotes", map[string]any{
					"distance_km": 25, "vehicle_type": "Car", "pet_size": "Medium", "pet_count": 2,
				})
			},
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url string, payload any, token string) (int, time.Duration, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, 0, nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, time.Since(start), out, err
}

func expectStatus(name, method, url string, payload any, token string, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, latency, _, err := r.do(ctx, method, url, payload, token)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			if status != want {
				return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", status, want)}
			}
			return Result{Status: StatusPass, Latency: latency}
		},
	}
}

func expectQuote(name, base string, payload map[string]any, wantTotal int64) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, latency, body, err := r.do(ctx, http.MethodPost, base+"/api/quotes", payload, "")
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			if status != http.StatusOK {
				return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			var q struct {
				TotalFare struct {
					Amount int64 `json:"amount"`
				} `json:"total_fare"`
			}
			if err := json.Unmarshal(body, &q); err != nil {
				return Result{Status: StatusFail, Latency: latency, Note: err.Error()}
			}
			if q.TotalFare.Amount != wantTotal {
				return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("total=%d want=%d", q.TotalFare.Amount, wantTotal)}
			}
			return Result{Status: StatusPass, Latency: latency}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, _, err := r.do(ctx, http.MethodPost, url, payload, "")
				if err != nil || status != http.StatusOK {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	return tables, nil
}

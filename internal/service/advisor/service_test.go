package advisor_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"github.com/bridgehead/bridgehead-api/internal/service/advisor"
	"github.com/bridgehead/bridgehead-api/internal/store"
	"github.com/bridgehead/bridgehead-api/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mountainView = testutils.MountainView

func demandPost(id string, upvotes int) domain.DemandPost {
	return testutils.NewDemandPost(id, upvotes)
}

func rentalPost(id string) domain.RentalPost {
	return testutils.NewRentalPost(id)
}

type fixture struct {
	gen     *mockGenerator
	demands *mockDemandStore
	rentals *mockRentalStore
	cache   *mockCache
	svc     advisor.Service
}

func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()

	f := &fixture{
		gen:     &mockGenerator{},
		demands: &mockDemandStore{},
		rentals: &mockRentalStore{},
	}
	var cache advisor.GeocodeCache
	if withCache {
		f.cache = newMockCache()
		cache = f.cache
	}

	svc, err := advisor.NewAdvisorService(f.gen, f.demands, f.rentals, cache, advisor.Options{}, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNewAdvisorService_Validation(t *testing.T) {
	t.Parallel()

	_, err := advisor.NewAdvisorService(nil, &mockDemandStore{}, &mockRentalStore{}, nil, advisor.Options{}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = advisor.NewAdvisorService(&mockGenerator{}, nil, &mockRentalStore{}, nil, advisor.Options{}, nil)
	assert.Error(t, err)
}

func TestGeocode(t *testing.T) {
	t.Parallel()

	const address = "1600 Amphitheatre Parkway, Mountain View, CA"

	t.Run("parses model coordinates", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith(`{"latitude": 37.422, "longitude": -122.084}`)

		coords, err := f.svc.Geocode(context.Background(), uuid.New(), address)

		require.NoError(t, err)
		assert.InDelta(t, 37.422, coords.Latitude, 1e-9)
		assert.InDelta(t, -122.084, coords.Longitude, 1e-9)

		reqs := f.gen.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, generation.TaskGeocode, reqs[0].Task)
		assert.True(t, reqs[0].JSON)
		assert.False(t, reqs[0].Grounding)
		assert.Contains(t, reqs[0].Prompt, address)
	})

	t.Run("fenced response", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith("```json\n{\"latitude\": 40.7128, \"longitude\": -74.006}\n```")

		coords, err := f.svc.Geocode(context.Background(), uuid.Nil, "New York")

		require.NoError(t, err)
		assert.InDelta(t, 40.7128, coords.Latitude, 1e-9)
	})

	t.Run("empty address is rejected before any upstream call", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.svc.Geocode(context.Background(), uuid.New(), "   ")

		assert.ErrorIs(t, err, generation.ErrEmptyInput)
		assert.Empty(t, f.gen.Requests())
	})

	t.Run("unparseable response", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith("I think it is somewhere in California.")

		_, err := f.svc.Geocode(context.Background(), uuid.New(), address)

		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
		var advErr *advisor.AdvisorError
		require.ErrorAs(t, err, &advErr)
		assert.Equal(t, "geocode", advErr.Operation)
	})

	t.Run("upstream failure propagates", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = func(context.Context, generation.Request) (*generation.Response, error) {
			return nil, fmt.Errorf("%w: quota", generation.ErrTransientFailure)
		}

		_, err := f.svc.Geocode(context.Background(), uuid.New(), address)

		assert.ErrorIs(t, err, generation.ErrTransientFailure)
	})
}

func TestGeocode_Cache(t *testing.T) {
	t.Parallel()

	const address = "1 Market St, San Francisco"

	t.Run("miss then hit", func(t *testing.T) {
		f := newFixture(t, true)
		f.gen.GenerateFn = respondWith(`{"latitude": 37.7936, "longitude": -122.3950}`)

		first, err := f.svc.Geocode(context.Background(), uuid.New(), address)
		require.NoError(t, err)
		second, err := f.svc.Geocode(context.Background(), uuid.New(), address)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, f.gen.Requests(), 1)
		assert.Equal(t, 1, f.cache.sets)
	})

	t.Run("cache errors do not fail the request", func(t *testing.T) {
		f := newFixture(t, true)
		f.cache.getErr = errors.New("connection refused")
		f.cache.setErr = errors.New("connection refused")
		f.gen.GenerateFn = respondWith(`{"latitude": 37.7936, "longitude": -122.3950}`)

		coords, err := f.svc.Geocode(context.Background(), uuid.New(), address)

		require.NoError(t, err)
		assert.InDelta(t, 37.7936, coords.Latitude, 1e-9)
	})

	t.Run("invalid answers are not cached", func(t *testing.T) {
		f := newFixture(t, true)
		f.gen.GenerateFn = respondWith(`{"latitude": 137.0, "longitude": 10}`)

		_, err := f.svc.Geocode(context.Background(), uuid.New(), address)

		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
		assert.Equal(t, 0, f.cache.sets)
	})
}

func TestReverseGeocode(t *testing.T) {
	t.Parallel()

	t.Run("returns the trimmed address", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith("  1600 Amphitheatre Pkwy,\n Mountain View, CA  ")

		loc, err := f.svc.ReverseGeocode(context.Background(), uuid.New(), mountainView)

		require.NoError(t, err)
		assert.Equal(t, mountainView, loc.Coordinates)
		assert.Equal(t, "1600 Amphitheatre Pkwy, Mountain View, CA", loc.Address)

		reqs := f.gen.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, generation.TaskReverseGeocode, reqs[0].Task)
		assert.False(t, reqs[0].JSON)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.svc.ReverseGeocode(context.Background(), uuid.New(), domain.Coordinates{Latitude: 91})

		assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)
		assert.Empty(t, f.gen.Requests())
	})

	t.Run("blank answer", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith("   ")

		_, err := f.svc.ReverseGeocode(context.Background(), uuid.New(), mountainView)

		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})
}

func TestGenerateIdeas(t *testing.T) {
	t.Parallel()

	t.Run("grounded report from nearby demands", func(t *testing.T) {
		f := newFixture(t, false)

		var gotRadius float64
		var gotLimit int
		f.demands.ListNearFn = func(_ context.Context, center domain.Coordinates, radiusKm float64, limit int) ([]domain.DemandPost, error) {
			assert.Equal(t, mountainView, center)
			gotRadius, gotLimit = radiusKm, limit
			posts := make([]domain.DemandPost, 0, 15)
			for i := 0; i < 15; i++ {
				posts = append(posts, demandPost(fmt.Sprintf("d%d", i), i))
			}
			return posts, nil
		}
		f.gen.GenerateFn = func(_ context.Context, req generation.Request) (*generation.Response, error) {
			return &generation.Response{
				Text: "## Ideas\n\n1. Bakery",
				Sources: []domain.GroundingSource{
					{Kind: domain.SourceKindMaps, Title: "Castro St", URI: "https://maps.example/1"},
				},
			}, nil
		}

		report, err := f.svc.GenerateIdeas(context.Background(), uuid.New(), advisor.IdeaRequest{
			Location: mountainView,
			DeepDive: true,
			RadiusKm: 5,
		})

		require.NoError(t, err)
		assert.Equal(t, "## Ideas\n\n1. Bakery", report.Markdown)
		assert.True(t, report.DeepDive)
		assert.Equal(t, generation.DefaultMaxIdeaDemands, report.DemandCount)
		require.Len(t, report.Sources, 1)
		assert.Equal(t, "Castro St", report.Sources[0].Title)
		assert.Equal(t, 5.0, gotRadius)
		assert.Equal(t, 100, gotLimit)

		reqs := f.gen.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, generation.TaskIdeas, reqs[0].Task)
		assert.True(t, reqs[0].DeepDive)
		assert.True(t, reqs[0].Grounding)
		require.NotNil(t, reqs[0].Location)
		assert.Equal(t, mountainView, *reqs[0].Location)
		assert.Contains(t, reqs[0].Prompt, "Demand d14")
		assert.NotContains(t, reqs[0].Prompt, "Demand d4 ")
	})

	t.Run("no demands still produces a report with empty sources", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith("## Ideas")

		report, err := f.svc.GenerateIdeas(context.Background(), uuid.New(), advisor.IdeaRequest{Location: mountainView})

		require.NoError(t, err)
		assert.NotNil(t, report.Sources)
		assert.Empty(t, report.Sources)
		assert.Equal(t, 0, report.DemandCount)
		assert.Contains(t, f.gen.Requests()[0].Prompt, "No community demand posts")
	})

	errorCases := []struct {
		name    string
		setup   func(f *fixture)
		req     advisor.IdeaRequest
		wantErr error
	}{
		{
			name:    "invalid location",
			req:     advisor.IdeaRequest{Location: domain.Coordinates{Longitude: 200}},
			wantErr: domain.ErrInvalidCoordinates,
		},
		{
			name: "store unavailable",
			setup: func(f *fixture) {
				f.demands.ListNearFn = func(context.Context, domain.Coordinates, float64, int) ([]domain.DemandPost, error) {
					return nil, store.ErrUnavailable
				}
			},
			req:     advisor.IdeaRequest{Location: mountainView},
			wantErr: store.ErrUnavailable,
		},
		{
			name: "content blocked",
			setup: func(f *fixture) {
				f.gen.GenerateFn = func(context.Context, generation.Request) (*generation.Response, error) {
					return nil, generation.ErrContentBlocked
				}
			},
			req:     advisor.IdeaRequest{Location: mountainView},
			wantErr: generation.ErrContentBlocked,
		},
		{
			name: "transient failure",
			setup: func(f *fixture) {
				f.gen.GenerateFn = func(context.Context, generation.Request) (*generation.Response, error) {
					return nil, generation.ErrTransientFailure
				}
			},
			req:     advisor.IdeaRequest{Location: mountainView, DeepDive: true},
			wantErr: generation.ErrTransientFailure,
		},
		{
			name: "blank markdown",
			setup: func(f *fixture) {
				f.gen.GenerateFn = respondWith("\n\n")
			},
			req:     advisor.IdeaRequest{Location: mountainView},
			wantErr: generation.ErrInvalidResponse,
		},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, false)
			if tc.setup != nil {
				tc.setup(f)
			}

			report, err := f.svc.GenerateIdeas(context.Background(), uuid.New(), tc.req)

			assert.Nil(t, report)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestMatchPosts(t *testing.T) {
	t.Parallel()

	t.Run("single pair", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith(`[{"demandId":"d1","rentalId":"r1","reasoning":"Bakery fits the corner unit","confidenceScore":0.85}]`)

		matches, err := f.svc.MatchPosts(context.Background(),
			[]domain.DemandPost{demandPost("d1", 3)},
			[]domain.RentalPost{rentalPost("r1")})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "d1", matches[0].Demand.ID)
		assert.Equal(t, "r1", matches[0].Rental.ID)
		assert.Equal(t, "Bakery fits the corner unit", matches[0].Reasoning)
		assert.InDelta(t, 0.85, matches[0].ConfidenceScore, 1e-9)

		reqs := f.gen.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, generation.TaskMatches, reqs[0].Task)
		assert.True(t, reqs[0].JSON)
	})

	t.Run("unknown references are dropped", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith(`[
			{"demandId":"d1","rentalId":"r1","reasoning":"good","confidenceScore":0.5},
			{"demandId":"d9","rentalId":"r1","reasoning":"ghost demand","confidenceScore":0.9},
			{"demandId":"d1","rentalId":"r9","reasoning":"ghost rental","confidenceScore":0.95}
		]`)

		matches, err := f.svc.MatchPosts(context.Background(),
			[]domain.DemandPost{demandPost("d1", 0)},
			[]domain.RentalPost{rentalPost("r1")})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "good", matches[0].Reasoning)
	})

	t.Run("empty model answer", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith("[]")

		matches, err := f.svc.MatchPosts(context.Background(),
			[]domain.DemandPost{demandPost("d1", 0)},
			[]domain.RentalPost{rentalPost("r1")})

		require.NoError(t, err)
		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	})

	t.Run("no candidates skips the upstream call", func(t *testing.T) {
		f := newFixture(t, false)

		matches, err := f.svc.MatchPosts(context.Background(), nil, []domain.RentalPost{rentalPost("r1")})
		require.NoError(t, err)
		assert.NotNil(t, matches)
		assert.Empty(t, matches)

		matches, err = f.svc.MatchPosts(context.Background(), []domain.DemandPost{demandPost("d1", 0)}, nil)
		require.NoError(t, err)
		assert.Empty(t, matches)

		assert.Empty(t, f.gen.Requests())
	})

	t.Run("invalid posts are left out of the prompt", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith(`[{"demandId":"d2","rentalId":"r1","reasoning":"untitled","confidenceScore":0.9}]`)

		untitled := demandPost("d2", 0)
		untitled.Title = "  "
		offMap := demandPost("d3", 0)
		offMap.Location.Latitude = 120

		matches, err := f.svc.MatchPosts(context.Background(),
			[]domain.DemandPost{demandPost("d1", 0), untitled, offMap},
			[]domain.RentalPost{rentalPost("r1")})

		require.NoError(t, err)
		assert.Empty(t, matches, "matches against skipped posts are unresolvable")

		reqs := f.gen.Requests()
		require.Len(t, reqs, 1)
		assert.Contains(t, reqs[0].Prompt, `"d1"`)
		assert.NotContains(t, reqs[0].Prompt, `"d2"`)
		assert.NotContains(t, reqs[0].Prompt, `"d3"`)
	})

	t.Run("only invalid rentals skips the upstream call", func(t *testing.T) {
		f := newFixture(t, false)

		negative := rentalPost("r1")
		negative.Price = -1

		matches, err := f.svc.MatchPosts(context.Background(),
			[]domain.DemandPost{demandPost("d1", 0)},
			[]domain.RentalPost{negative})

		require.NoError(t, err)
		assert.Empty(t, matches)
		assert.Empty(t, f.gen.Requests())
	})

	t.Run("malformed answer", func(t *testing.T) {
		f := newFixture(t, false)
		f.gen.GenerateFn = respondWith(`{"demandId":"d1"}`)

		_, err := f.svc.MatchPosts(context.Background(),
			[]domain.DemandPost{demandPost("d1", 0)},
			[]domain.RentalPost{rentalPost("r1")})

		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})
}

func TestResolveMatches_OrdersByConfidence(t *testing.T) {
	t.Parallel()

	demands := []domain.DemandPost{demandPost("d1", 0), demandPost("d2", 0), demandPost("d3", 0)}
	rentals := []domain.RentalPost{rentalPost("r1"), rentalPost("r2")}
	results := []domain.MatchResult{
		{DemandID: "d1", RentalID: "r1", Reasoning: "a", ConfidenceScore: 0.2},
		{DemandID: "d2", RentalID: "r1", Reasoning: "b", ConfidenceScore: 0.9},
		{DemandID: "d3", RentalID: "r2", Reasoning: "c", ConfidenceScore: 0.5},
		{DemandID: "d1", RentalID: "r2", Reasoning: "d", ConfidenceScore: 0.9},
	}
	original := append([]domain.MatchResult(nil), results...)

	matches := advisor.ResolveMatches(context.Background(), results, demands, rentals)

	require.Len(t, matches, len(results))
	assert.Equal(t, original, results, "input must not be reordered")

	reasons := make([]string, 0, len(matches))
	for i, m := range matches {
		reasons = append(reasons, m.Reasoning)
		if i > 0 {
			assert.GreaterOrEqual(t, matches[i-1].ConfidenceScore, m.ConfidenceScore)
		}
	}
	// Equal scores keep the model's order.
	assert.Equal(t, []string{"b", "d", "c", "a"}, reasons)

	// Output is a permutation of the input.
	want := []string{"a", "b", "c", "d"}
	sort.Strings(reasons)
	assert.Equal(t, want, reasons)
}

func TestResolveMatches_LogsDroppedReferences(t *testing.T) {
	t.Parallel()

	log, logs := testutils.NewTestLogger()
	ctx := logger.WithLogger(context.Background(), log)

	matches := advisor.ResolveMatches(ctx,
		[]domain.MatchResult{{DemandID: "ghost", RentalID: "r1", ConfidenceScore: 0.9}},
		[]domain.DemandPost{demandPost("d1", 0)},
		[]domain.RentalPost{rentalPost("r1")})

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
	dropped := logs.EntriesWithMessage("dropping match with unknown reference")
	require.Len(t, dropped, 1)
	assert.Equal(t, "DEBUG", dropped[0]["level"])
	assert.Equal(t, "ghost", dropped[0]["demand_id"])
}

func TestFindMatches(t *testing.T) {
	t.Parallel()

	t.Run("without IDs uses the most recent posts", func(t *testing.T) {
		f := newFixture(t, false)
		var demandLimit, rentalLimit int
		f.demands.ListRecentFn = func(_ context.Context, limit int) ([]domain.DemandPost, error) {
			demandLimit = limit
			return []domain.DemandPost{demandPost("d1", 0)}, nil
		}
		f.rentals.ListRecentFn = func(_ context.Context, limit int) ([]domain.RentalPost, error) {
			rentalLimit = limit
			return []domain.RentalPost{rentalPost("r1")}, nil
		}
		f.gen.GenerateFn = respondWith(`[{"demandId":"d1","rentalId":"r1","reasoning":"fit","confidenceScore":0.7}]`)

		matches, err := f.svc.FindMatches(context.Background(), uuid.New(), advisor.MatchRequest{})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, 50, demandLimit)
		assert.Equal(t, 50, rentalLimit)
	})

	t.Run("with IDs loads exactly those posts", func(t *testing.T) {
		f := newFixture(t, false)
		f.demands.GetByIDsFn = func(_ context.Context, ids []string) ([]domain.DemandPost, error) {
			assert.Equal(t, []string{"d2"}, ids)
			return []domain.DemandPost{demandPost("d2", 0)}, nil
		}
		f.rentals.GetByIDsFn = func(_ context.Context, ids []string) ([]domain.RentalPost, error) {
			assert.Equal(t, []string{"r3", "r4"}, ids)
			return []domain.RentalPost{rentalPost("r3"), rentalPost("r4")}, nil
		}
		f.gen.GenerateFn = respondWith("[]")

		matches, err := f.svc.FindMatches(context.Background(), uuid.New(), advisor.MatchRequest{
			DemandIDs: []string{"d2"},
			RentalIDs: []string{"r3", "r4"},
		})

		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("unknown post", func(t *testing.T) {
		f := newFixture(t, false)
		f.demands.GetByIDsFn = func(context.Context, []string) ([]domain.DemandPost, error) {
			return nil, fmt.Errorf("%w: d404", store.ErrDemandNotFound)
		}

		_, err := f.svc.FindMatches(context.Background(), uuid.New(), advisor.MatchRequest{DemandIDs: []string{"d404"}})

		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Empty(t, f.gen.Requests())
	})
}

func TestService_NewerRequestSupersedesOlder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	user := uuid.New()

	started := make(chan struct{})
	calls := 0
	f.gen.GenerateFn = func(ctx context.Context, req generation.Request) (*generation.Response, error) {
		f.gen.mu.Lock()
		calls++
		n := calls
		f.gen.mu.Unlock()

		if n == 1 {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &generation.Response{Text: "## Fresh ideas"}, nil
	}

	firstErr := make(chan error, 1)
	go func() {
		_, err := f.svc.GenerateIdeas(context.Background(), user, advisor.IdeaRequest{Location: mountainView})
		firstErr <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never reached the generator")
	}

	report, err := f.svc.GenerateIdeas(context.Background(), user, advisor.IdeaRequest{Location: mountainView})
	require.NoError(t, err)
	assert.Equal(t, "## Fresh ideas", report.Markdown)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, advisor.ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("first request did not finish")
	}
}

func TestService_DifferentActionsDoNotSupersede(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	user := uuid.New()
	f.gen.GenerateFn = func(_ context.Context, req generation.Request) (*generation.Response, error) {
		if req.Task == generation.TaskGeocode {
			return &generation.Response{Text: `{"latitude": 1, "longitude": 2}`}, nil
		}
		return &generation.Response{Text: "Somewhere"}, nil
	}

	_, err := f.svc.Geocode(context.Background(), user, "Somewhere")
	require.NoError(t, err)
	_, err = f.svc.ReverseGeocode(context.Background(), user, domain.Coordinates{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"github.com/bridgehead/bridgehead-api/internal/store"
)

// nearbyCandidateLimit bounds how many of the nearest rows a nearby search
// pulls from the geohash cells before the exact distance filter.
const nearbyCandidateLimit = 500

const demandColumns = `id, title, category, description, latitude, longitude, address,
	images, upvotes, phone, email, open_to_collaboration, created_at`

const rentalColumns = `id, title, category, description, latitude, longitude, address,
	images, price, square_feet, phone, email, open_to_collaboration, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresDemandStore implements the store.DemandStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDemandStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDemandStore creates a new PostgreSQL implementation of the DemandStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDemandStore(db store.DBTX, logger *slog.Logger) *PostgresDemandStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDemandStore{
		db:     db,
		logger: logger.With(slog.String("component", "demand_store")),
	}
}

// Ensure PostgresDemandStore implements store.DemandStore interface
var _ store.DemandStore = (*PostgresDemandStore)(nil)

// ListRecent implements store.DemandStore.ListRecent
func (s *PostgresDemandStore) ListRecent(ctx context.Context, limit int) ([]domain.DemandPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if limit <= 0 {
		return []domain.DemandPost{}, nil
	}

	query := `SELECT ` + demandColumns + ` FROM demands ORDER BY created_at DESC, id LIMIT $1`
	demands, err := queryPosts(ctx, s.db, scanDemand, query, limit)
	if err != nil {
		log.Error("failed to list recent demands", slog.String("error", err.Error()))
		return nil, store.NewStoreError("demand", "list_recent", "query failed", MapError(err))
	}

	log.Debug("listed recent demands", slog.Int("count", len(demands)))
	return demands, nil
}

// GetByIDs implements store.DemandStore.GetByIDs
// Returns store.ErrDemandNotFound listing every unknown ID.
func (s *PostgresDemandStore) GetByIDs(ctx context.Context, ids []string) ([]domain.DemandPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []domain.DemandPost{}, nil
	}

	placeholders, args := inClause(ids, 1)
	query := `SELECT ` + demandColumns + ` FROM demands WHERE id IN (` + placeholders + `)`
	demands, err := queryPosts(ctx, s.db, scanDemand, query, args...)
	if err != nil {
		log.Error("failed to get demands by id",
			slog.String("error", err.Error()),
			slog.Int("id_count", len(ids)))
		return nil, store.NewStoreError("demand", "get_by_ids", "query failed", MapError(err))
	}

	ordered, missing := orderByIDs(ids, demands, func(d domain.DemandPost) string { return d.ID })
	if len(missing) > 0 {
		log.Debug("requested demands not found", slog.Any("missing_ids", missing))
		return nil, fmt.Errorf("%w: %s", store.ErrDemandNotFound, strings.Join(missing, ", "))
	}
	return ordered, nil
}

// ListNear implements store.DemandStore.ListNear
// Candidates come from the geohash cell around center and its neighbours, and
// are then filtered by exact great-circle distance.
func (s *PostgresDemandStore) ListNear(
	ctx context.Context,
	center domain.Coordinates,
	radiusKm float64,
	limit int,
) ([]domain.DemandPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidQuery, err)
	}
	if limit <= 0 {
		return []domain.DemandPost{}, nil
	}
	radiusKm = NormalizeRadius(radiusKm)

	precision, cells := searchCells(center, radiusKm)
	prefixes, args := prefixClause("geohash", cells, 1)
	n := len(args)
	args = append(args, center.Latitude, center.Longitude, lngScale(center.Latitude), nearbyCandidateLimit)
	// Candidates are ranked by planar distance so the limit keeps the closest rows.
	query := fmt.Sprintf(
		`SELECT %s FROM demands WHERE %s
		ORDER BY power(latitude - $%d, 2) + power((longitude - $%d) * $%d, 2), created_at DESC
		LIMIT $%d`,
		demandColumns, prefixes, n+1, n+2, n+3, n+4,
	)

	candidates, err := queryPosts(ctx, s.db, scanDemand, query, args...)
	if err != nil {
		log.Error("failed to list nearby demands",
			slog.String("error", err.Error()),
			slog.Float64("radius_km", radiusKm))
		return nil, store.NewStoreError("demand", "list_near", "query failed", MapError(err))
	}

	type scored struct {
		post     domain.DemandPost
		distance float64
	}
	within := make([]scored, 0, len(candidates))
	for _, d := range candidates {
		if dist := center.DistanceKm(d.Location.Coordinates); dist <= radiusKm {
			within = append(within, scored{post: d, distance: dist})
		}
	}
	sort.SliceStable(within, func(i, j int) bool {
		if within[i].distance != within[j].distance {
			return within[i].distance < within[j].distance
		}
		return within[i].post.CreatedAt.After(within[j].post.CreatedAt)
	})
	if len(within) > limit {
		within = within[:limit]
	}

	demands := make([]domain.DemandPost, len(within))
	for i, w := range within {
		demands[i] = w.post
	}

	log.Debug("listed nearby demands",
		slog.Int("candidates", len(candidates)),
		slog.Int("count", len(demands)),
		slog.Uint64("geohash_precision", uint64(precision)),
		slog.Float64("radius_km", radiusKm))
	return demands, nil
}

// PostgresRentalStore implements the store.RentalStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRentalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRentalStore creates a new PostgreSQL implementation of the RentalStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresRentalStore(db store.DBTX, logger *slog.Logger) *PostgresRentalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRentalStore{
		db:     db,
		logger: logger.With(slog.String("component", "rental_store")),
	}
}

// Ensure PostgresRentalStore implements store.RentalStore interface
var _ store.RentalStore = (*PostgresRentalStore)(nil)

// ListRecent implements store.RentalStore.ListRecent
func (s *PostgresRentalStore) ListRecent(ctx context.Context, limit int) ([]domain.RentalPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if limit <= 0 {
		return []domain.RentalPost{}, nil
	}

	query := `SELECT ` + rentalColumns + ` FROM rentals ORDER BY created_at DESC, id LIMIT $1`
	rentals, err := queryPosts(ctx, s.db, scanRental, query, limit)
	if err != nil {
		log.Error("failed to list recent rentals", slog.String("error", err.Error()))
		return nil, store.NewStoreError("rental", "list_recent", "query failed", MapError(err))
	}
	return rentals, nil
}

// GetByIDs implements store.RentalStore.GetByIDs
// Returns store.ErrRentalNotFound listing every unknown ID.
func (s *PostgresRentalStore) GetByIDs(ctx context.Context, ids []string) ([]domain.RentalPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []domain.RentalPost{}, nil
	}

	placeholders, args := inClause(ids, 1)
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id IN (` + placeholders + `)`
	rentals, err := queryPosts(ctx, s.db, scanRental, query, args...)
	if err != nil {
		log.Error("failed to get rentals by id",
			slog.String("error", err.Error()),
			slog.Int("id_count", len(ids)))
		return nil, store.NewStoreError("rental", "get_by_ids", "query failed", MapError(err))
	}

	ordered, missing := orderByIDs(ids, rentals, func(r domain.RentalPost) string { return r.ID })
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrRentalNotFound, strings.Join(missing, ", "))
	}
	return ordered, nil
}

// NormalizeRadius applies the default and the cap to a requested search radius.
func NormalizeRadius(radiusKm float64) float64 {
	switch {
	case radiusKm <= 0:
		return store.DefaultRadiusKm
	case radiusKm > store.MaxRadiusKm:
		return store.MaxRadiusKm
	default:
		return radiusKm
	}
}

func queryPosts[T any](
	ctx context.Context,
	db store.DBTX,
	scan func(rowScanner) (T, error),
	query string,
	args ...any,
) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	posts := []T{}
	for rows.Next() {
		post, err := scan(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func scanDemand(row rowScanner) (domain.DemandPost, error) {
	var (
		d            domain.DemandPost
		images       []byte
		phone, email sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.Title, &d.Category, &d.Description,
		&d.Location.Latitude, &d.Location.Longitude, &d.Location.Address,
		&images, &d.Upvotes, &phone, &email, &d.OpenToCollaboration, &d.CreatedAt,
	)
	if err != nil {
		return domain.DemandPost{}, fmt.Errorf("failed to scan demand: %w", err)
	}
	if d.Images, err = decodeImages(images); err != nil {
		return domain.DemandPost{}, fmt.Errorf("demand %s: %w", d.ID, err)
	}
	d.Phone, d.Email = phone.String, email.String
	return d, nil
}

func scanRental(row rowScanner) (domain.RentalPost, error) {
	var (
		r            domain.RentalPost
		images       []byte
		phone, email sql.NullString
	)
	err := row.Scan(
		&r.ID, &r.Title, &r.Category, &r.Description,
		&r.Location.Latitude, &r.Location.Longitude, &r.Location.Address,
		&images, &r.Price, &r.SquareFeet, &phone, &email, &r.OpenToCollaboration, &r.CreatedAt,
	)
	if err != nil {
		return domain.RentalPost{}, fmt.Errorf("failed to scan rental: %w", err)
	}
	if r.Images, err = decodeImages(images); err != nil {
		return domain.RentalPost{}, fmt.Errorf("rental %s: %w", r.ID, err)
	}
	r.Phone, r.Email = phone.String, email.String
	return r, nil
}

func decodeImages(raw []byte) ([]string, error) {
	images := []string{}
	if len(raw) == 0 {
		return images, nil
	}
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if images == nil {
		images = []string{}
	}
	return images, nil
}

// inClause returns "$n, $n+1, ..." for values starting at placeholder start.
func inClause(values []string, start int) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
		args[i] = v
	}
	return strings.Join(placeholders, ", "), args
}

// prefixClause returns "(column LIKE $n OR column LIKE $n+1 ...)" matching any
// of the geohash prefixes. Geohash alphabets contain no LIKE metacharacters.
func prefixClause(column string, prefixes []string, start int) (string, []any) {
	terms := make([]string, len(prefixes))
	args := make([]any, len(prefixes))
	for i, p := range prefixes {
		terms[i] = fmt.Sprintf("%s LIKE $%d", column, start+i)
		args[i] = p + "%"
	}
	return "(" + strings.Join(terms, " OR ") + ")", args
}

// lngScale converts degrees of longitude to latitude-equivalent degrees at lat.
func lngScale(lat float64) float64 {
	return math.Cos(lat * math.Pi / 180)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// orderByIDs returns posts in the order of ids plus the ids with no post.
func orderByIDs[T any](ids []string, posts []T, idOf func(T) string) ([]T, []string) {
	byID := make(map[string]T, len(posts))
	for _, p := range posts {
		byID[idOf(p)] = p
	}

	ordered := make([]T, 0, len(ids))
	var missing []string
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, p)
	}
	return ordered, missing
}

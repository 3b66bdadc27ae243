package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/enzy247/allocd/internal/planner"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// modelKey is the single key under which the recommender model snapshot
// lives in its bucket.
const modelKey = "current"

// Config configures the store.
type Config struct {
	// BucketPrefix namespaces the KV buckets (default "allocd").
	BucketPrefix string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{BucketPrefix: "allocd"}
}

// Store persists entities in JetStream KV buckets.
type Store struct {
	logger *zap.Logger

	resources    nats.KeyValue
	tasks        nats.KeyValue
	alternatives nats.KeyValue
	choices      nats.KeyValue
	models       nats.KeyValue

	mu     sync.Mutex
	nextID map[string]int64
}

// New creates a store on top of an established NATS connection,
// creating the KV buckets if needed and seeding ID counters from the
// existing keys.
func New(nc *nats.Conn, cfg *Config, logger *zap.Logger) (*Store, error) {
	if nc == nil {
		return nil, errors.New("nats connection is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	s := &Store{
		logger: logger,
		nextID: make(map[string]int64),
	}

	buckets := []struct {
		name string
		dst  *nats.KeyValue
	}{
		{"resources", &s.resources},
		{"tasks", &s.tasks},
		{"alternatives", &s.alternatives},
		{"choices", &s.choices},
		{"models", &s.models},
	}
	for _, b := range buckets {
		kv, err := ensureBucket(js, cfg.BucketPrefix+"_"+b.name)
		if err != nil {
			return nil, err
		}
		*b.dst = kv
		if b.name != "models" {
			max, err := maxKey(kv)
			if err != nil {
				return nil, fmt.Errorf("seed %s counter: %w", b.name, err)
			}
			s.nextID[b.name] = max
		}
	}

	logger.Info("store ready",
		zap.String("bucket_prefix", cfg.BucketPrefix),
		zap.Int64("resources_seen", s.nextID["resources"]),
		zap.Int64("tasks_seen", s.nextID["tasks"]))
	return s, nil
}

func ensureBucket(js nats.JetStreamContext, name string) (nats.KeyValue, error) {
	kv, err := js.KeyValue(name)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: name})
	}
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", name, err)
	}
	return kv, nil
}

// maxKey returns the largest numeric key in a bucket, 0 when empty.
func maxKey(kv nats.KeyValue) (int64, error) {
	keys, err := kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var max int64
	for _, k := range keys {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (s *Store) allocateID(bucket string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID[bucket]++
	return s.nextID[bucket]
}

func putJSON(kv nats.KeyValue, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if _, err := kv.Put(key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func getJSON(kv nats.KeyValue, key string, v any) error {
	entry, err := kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(entry.Value(), v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func listKeys(kv nats.KeyValue) ([]string, error) {
	keys, err := kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func purgeBucket(kv nats.KeyValue) error {
	keys, err := listKeys(kv)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := kv.Purge(k); err != nil {
			return fmt.Errorf("purge %s: %w", k, err)
		}
	}
	return nil
}

// Resources

// CreateResource stores a new resource and assigns its ID.
func (s *Store) CreateResource(r planner.Resource) (planner.Resource, error) {
	r.ID = s.allocateID("resources")
	if err := putJSON(s.resources, strconv.FormatInt(r.ID, 10), r); err != nil {
		return planner.Resource{}, err
	}
	s.logger.Debug("created resource", zap.Int64("id", r.ID), zap.String("name", r.Name))
	return r, nil
}

// GetResource fetches one resource by ID.
func (s *Store) GetResource(id int64) (planner.Resource, error) {
	var r planner.Resource
	if err := getJSON(s.resources, strconv.FormatInt(id, 10), &r); err != nil {
		return planner.Resource{}, err
	}
	return r, nil
}

// ListResources returns all resources ordered by ID.
func (s *Store) ListResources() ([]planner.Resource, error) {
	keys, err := listKeys(s.resources)
	if err != nil {
		return nil, err
	}
	out := make([]planner.Resource, 0, len(keys))
	for _, k := range keys {
		var r planner.Resource
		if err := getJSON(s.resources, k, &r); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateResource overwrites an existing resource.
func (s *Store) UpdateResource(r planner.Resource) (planner.Resource, error) {
	if _, err := s.GetResource(r.ID); err != nil {
		return planner.Resource{}, err
	}
	if err := putJSON(s.resources, strconv.FormatInt(r.ID, 10), r); err != nil {
		return planner.Resource{}, err
	}
	return r, nil
}

// DeleteResource removes a resource.
func (s *Store) DeleteResource(id int64) error {
	if _, err := s.GetResource(id); err != nil {
		return err
	}
	if err := s.resources.Purge(strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("delete resource %d: %w", id, err)
	}
	return nil
}

// Tasks

// CreateTask stores a new task and assigns its ID.
func (s *Store) CreateTask(t planner.Task) (planner.Task, error) {
	t.ID = s.allocateID("tasks")
	if err := putJSON(s.tasks, strconv.FormatInt(t.ID, 10), t); err != nil {
		return planner.Task{}, err
	}
	s.logger.Debug("created task", zap.Int64("id", t.ID), zap.String("title", t.Title))
	return t, nil
}

// GetTask fetches one task by ID.
func (s *Store) GetTask(id int64) (planner.Task, error) {
	var t planner.Task
	if err := getJSON(s.tasks, strconv.FormatInt(id, 10), &t); err != nil {
		return planner.Task{}, err
	}
	return t, nil
}

// ListTasks returns all tasks ordered by ID.
func (s *Store) ListTasks() ([]planner.Task, error) {
	keys, err := listKeys(s.tasks)
	if err != nil {
		return nil, err
	}
	out := make([]planner.Task, 0, len(keys))
	for _, k := range keys {
		var t planner.Task
		if err := getJSON(s.tasks, k, &t); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateTask overwrites an existing task.
func (s *Store) UpdateTask(t planner.Task) (planner.Task, error) {
	if _, err := s.GetTask(t.ID); err != nil {
		return planner.Task{}, err
	}
	if err := putJSON(s.tasks, strconv.FormatInt(t.ID, 10), t); err != nil {
		return planner.Task{}, err
	}
	return t, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id int64) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}
	if err := s.tasks.Purge(strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// Alternatives

// ReplaceAlternatives discards all stored alternatives and persists the
// given set, assigning fresh IDs. Insertion order is preserved in the
// assigned IDs, so the planner's ranking survives the round trip.
func (s *Store) ReplaceAlternatives(alts []Alternative) ([]Alternative, error) {
	if err := purgeBucket(s.alternatives); err != nil {
		return nil, err
	}
	out := make([]Alternative, 0, len(alts))
	for _, alt := range alts {
		alt.ID = s.allocateID("alternatives")
		if err := putJSON(s.alternatives, strconv.FormatInt(alt.ID, 10), alt); err != nil {
			return nil, err
		}
		out = append(out, alt)
	}
	s.logger.Debug("replaced alternatives", zap.Int("count", len(out)))
	return out, nil
}

// GetAlternative fetches one alternative by ID.
func (s *Store) GetAlternative(id int64) (Alternative, error) {
	var alt Alternative
	if err := getJSON(s.alternatives, strconv.FormatInt(id, 10), &alt); err != nil {
		return Alternative{}, err
	}
	return alt, nil
}

// ListAlternatives returns all stored alternatives ordered by ID, which
// is generation order (best score first within a run).
func (s *Store) ListAlternatives() ([]Alternative, error) {
	keys, err := listKeys(s.alternatives)
	if err != nil {
		return nil, err
	}
	out := make([]Alternative, 0, len(keys))
	for _, k := range keys {
		var alt Alternative
		if err := getJSON(s.alternatives, k, &alt); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, alt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteAlternatives drops all stored alternatives.
func (s *Store) DeleteAlternatives() error {
	return purgeBucket(s.alternatives)
}

// Choices

// AppendChoice stores a user selection record.
func (s *Store) AppendChoice(c Choice) (Choice, error) {
	c.ID = s.allocateID("choices")
	if err := putJSON(s.choices, strconv.FormatInt(c.ID, 10), c); err != nil {
		return Choice{}, err
	}
	return c, nil
}

// ListChoices returns all selection records ordered by ID.
func (s *Store) ListChoices() ([]Choice, error) {
	keys, err := listKeys(s.choices)
	if err != nil {
		return nil, err
	}
	out := make([]Choice, 0, len(keys))
	for _, k := range keys {
		var c Choice
		if err := getJSON(s.choices, k, &c); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Model snapshot

// SaveModel persists the recommender model snapshot.
func (s *Store) SaveModel(data []byte) error {
	if _, err := s.models.Put(modelKey, data); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// LoadModel returns the persisted recommender model snapshot, or
// ErrNotFound when none has been saved.
func (s *Store) LoadModel() ([]byte, error) {
	entry, err := s.models.Get(modelKey)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return entry.Value(), nil
}

// ClearAll wipes resources, tasks, alternatives and choices. The model
// snapshot survives; retraining overwrites it.
func (s *Store) ClearAll() (map[string]int, error) {
	counts := make(map[string]int)
	for _, b := range []struct {
		name string
		kv   nats.KeyValue
	}{
		{"resources", s.resources},
		{"tasks", s.tasks},
		{"alternatives", s.alternatives},
		{"choices", s.choices},
	} {
		keys, err := listKeys(b.kv)
		if err != nil {
			return nil, err
		}
		counts[b.name] = len(keys)
		if err := purgeBucket(b.kv); err != nil {
			return nil, err
		}
	}
	s.logger.Info("cleared all data",
		zap.Int("resources", counts["resources"]),
		zap.Int("tasks", counts["tasks"]),
		zap.Int("alternatives", counts["alternatives"]),
		zap.Int("choices", counts["choices"]))
	return counts, nil
}

// Package pinecone adapts the Pinecone Go SDK to the vector store the query and ingest use cases need.
package pinecone

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	pc "github.com/pinecone-io/go-pinecone/v5/pinecone"
	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/metrics"
)

// DefaultControllerURL is the global control plane.
const DefaultControllerURL = "https://api.pinecone.io"

const sourceTag = "indicbot"

// Config holds the vector store settings. An empty APIKey leaves the store unconfigured.
type Config struct {
	APIKey        string
	IndexName     string
	IndexHost     string
	ControllerURL string
	Namespace     string
	Timeout       time.Duration
	Logger        *zap.Logger
}

// IndexConnection is the part of *pc.IndexConnection the store uses.
type IndexConnection interface {
	QueryByVectorValues(ctx context.Context, in *pc.QueryByVectorValuesRequest) (*pc.QueryVectorsResponse, error)
	UpsertVectors(ctx context.Context, in []*pc.Vector) (uint32, error)
	DescribeIndexStats(ctx context.Context) (*pc.DescribeIndexStatsResponse, error)
	Close() error
}

// Store queries and writes one Pinecone index.
type Store struct {
	apiKey        string
	indexName     string
	controllerURL string
	namespace     string
	timeout       time.Duration
	logger        *zap.Logger

	// lookupHost and dial default to the SDK; tests replace them.
	lookupHost func(ctx context.Context) (string, error)
	dial       func(host, namespace string) (IndexConnection, error)

	mu     sync.Mutex
	sdk    *pc.Client
	host   string
	conn   IndexConnection
	closed bool
}

// New creates a Store. The index host is resolved and the connection opened on first use.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	controller := cfg.ControllerURL
	if controller == "" {
		controller = DefaultControllerURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		apiKey:        cfg.APIKey,
		indexName:     cfg.IndexName,
		controllerURL: strings.TrimRight(controller, "/"),
		namespace:     cfg.Namespace,
		timeout:       timeout,
		logger:        logger,
		host:          normalizeHost(cfg.IndexHost),
	}
	s.lookupHost = s.describeIndexHost
	s.dial = s.openIndex
	return s
}

// NewWithConnection creates a Store over an already open index connection.
func NewWithConnection(cfg Config, conn IndexConnection) *Store {
	s := New(cfg)
	s.conn = conn
	return s
}

// Configured reports whether credentials and an index name are present.
func (s *Store) Configured() bool {
	return s.apiKey != "" && s.indexName != ""
}

// IndexName returns the configured index.
func (s *Store) IndexName() string { return s.indexName }

// Close releases the index connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// connection returns the index connection, resolving the host on first use.
// Failed lookups are not cached.
func (s *Store) connection(ctx context.Context) (IndexConnection, error) {
	if !s.Configured() {
		return nil, domain.ErrStoreNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}
	if s.closed {
		return nil, fmt.Errorf("pinecone: store closed: %w", domain.ErrVectorStore)
	}

	if s.host == "" {
		start := time.Now()
		host, err := s.lookupHost(ctx)
		observe("describe_index", start, err)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe_index: %w: %w", domain.ErrVectorStore, err)
		}
		if host = normalizeHost(host); host == "" {
			return nil, fmt.Errorf("index %q has no host: %w", s.indexName, domain.ErrVectorStore)
		}
		s.host = host
		s.logger.Info("Resolved index host", zap.String("index", s.indexName), zap.String("host", s.host))
	}

	conn, err := s.dial(s.host, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("pinecone connect %s: %w: %w", s.host, domain.ErrVectorStore, err)
	}
	s.conn = conn
	return conn, nil
}

// client builds the SDK client once. Callers hold s.mu.
func (s *Store) client() (*pc.Client, error) {
	if s.sdk != nil {
		return s.sdk, nil
	}
	c, err := pc.NewClient(pc.NewClientParams{
		ApiKey:     s.apiKey,
		Host:       s.controllerURL,
		SourceTag:  sourceTag,
		RestClient: &http.Client{Timeout: s.timeout},
	})
	if err != nil {
		return nil, err
	}
	s.sdk = c
	return c, nil
}

func (s *Store) describeIndexHost(ctx context.Context) (string, error) {
	c, err := s.client()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	idx, err := c.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return "", err
	}
	return idx.Host, nil
}

func (s *Store) openIndex(host, namespace string) (IndexConnection, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	conn, err := c.Index(pc.NewIndexConnParams{Host: host, Namespace: namespace})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// call runs one data plane operation with the store timeout and records its metrics.
func (s *Store) call(ctx context.Context, op string, fn func(ctx context.Context, conn IndexConnection) error) error {
	conn, err := s.connection(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err = fn(ctx, conn)
	observe(op, start, err)
	if err != nil {
		s.logger.Debug("Pinecone request failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("pinecone %s: %w: %w", op, domain.ErrVectorStore, err)
	}
	return nil
}

func observe(op string, start time.Time, err error) {
	metrics.VectorStoreRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.VectorStoreRequestsTotal.WithLabelValues(op, status).Inc()
}

// normalizeHost strips the scheme and trailing slash; the data plane dials host names.
func normalizeHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	host = strings.TrimPrefix(host, "https://")
	return host
}

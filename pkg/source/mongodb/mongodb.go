// Package mongodb serves datasets from MongoDB collections.
//
// Each document of the collection named by the dataset id is one row and
// each top-level field (other than _id) is one column, ordered by first
// appearance. Documents are read in _id order. Column display names may be
// stored in a companion collection "<dataset>_columns" holding documents of
// the form {"_id": "<field>", "name": "<display name>"}.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stacktree/pkg/source"
	"github.com/matzehuels/stacktree/pkg/table"
)

// Name is the source name used in cache keys.
const Name = "mongodb"

// ColumnsSuffix names the metadata collection of a dataset.
const ColumnsSuffix = "_columns"

// Config configures a MongoDB source.
type Config struct {
	URI      string
	Database string
	// Timeout bounds connection setup. Zero means 10 seconds.
	Timeout time.Duration
}

// Source reads datasets from a MongoDB database.
type Source struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New("mongodb: uri and database are required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	return &Source{client: client, db: client.Database(cfg.Database)}, nil
}

// Name returns "mongodb".
func (s *Source) Name() string { return Name }

// Load reads every document of the dataset's collection.
func (s *Source) Load(ctx context.Context, dataset string) (*table.Table, error) {
	if err := source.ValidateDataset(dataset); err != nil {
		return nil, err
	}
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: dataset}})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: collection %s", source.ErrDatasetNotFound, dataset)
	}

	cur, err := s.db.Collection(dataset).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", dataset, err)
	}
	defer cur.Close(ctx)

	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read %s: %w", dataset, err)
	}

	meta, err := s.columnNames(ctx, dataset)
	if err != nil {
		return nil, err
	}
	return buildTable(docs, meta)
}

type columnDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

func (s *Source) columnNames(ctx context.Context, dataset string) (map[string]string, error) {
	cur, err := s.db.Collection(dataset+ColumnsSuffix).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s%s: %w", dataset, ColumnsSuffix, err)
	}
	defer cur.Close(ctx)

	var cols []columnDoc
	if err := cur.All(ctx, &cols); err != nil {
		return nil, fmt.Errorf("read %s%s: %w", dataset, ColumnsSuffix, err)
	}
	meta := make(map[string]string, len(cols))
	for _, c := range cols {
		meta[c.ID] = c.Name
	}
	return meta, nil
}

// List returns the dataset collections, excluding metadata collections.
func (s *Source) List(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	var ids []string
	for _, n := range names {
		if strings.HasSuffix(n, ColumnsSuffix) || source.ValidateDataset(n) != nil {
			continue
		}
		ids = append(ids, n)
	}
	slices.Sort(ids)
	return ids, nil
}

// Close disconnects the client.
func (s *Source) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// buildTable turns documents into columns. Fields missing from a document
// are null in that row.
func buildTable(docs []bson.D, meta map[string]string) (*table.Table, error) {
	var order []string
	index := make(map[string]int)
	for _, d := range docs {
		for _, e := range d {
			if e.Key == "_id" {
				continue
			}
			if _, ok := index[e.Key]; !ok {
				index[e.Key] = len(order)
				order = append(order, e.Key)
			}
		}
	}

	cols := make([][]table.Value, len(order))
	for j := range cols {
		cols[j] = make([]table.Value, len(docs))
	}
	for i, d := range docs {
		for _, e := range d {
			j, ok := index[e.Key]
			if !ok {
				continue
			}
			v, err := cell(e.Value)
			if err != nil {
				return nil, fmt.Errorf("row %d field %q: %w", i, e.Key, err)
			}
			cols[j][i] = v
		}
	}

	t := table.New()
	for j, id := range order {
		if err := t.AddColumn(id, meta[id], cols[j]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// cell converts a decoded BSON value to a table cell.
func cell(v any) (table.Value, error) {
	switch x := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return table.Null(), nil
	case string:
		return table.String(x), nil
	case bool:
		return table.String(strconv.FormatBool(x)), nil
	case int32:
		return table.Number(float64(x)), nil
	case int64:
		return table.Number(float64(x)), nil
	case float64:
		return table.Number(x), nil
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			return table.Value{}, fmt.Errorf("%w: decimal %s", table.ErrUnsupportedCell, x.String())
		}
		return table.Number(f), nil
	case primitive.DateTime:
		return table.String(x.Time().UTC().Format(time.RFC3339)), nil
	case primitive.ObjectID:
		return table.String(x.Hex()), nil
	default:
		return table.Value{}, fmt.Errorf("%w: %T", table.ErrUnsupportedCell, v)
	}
}

var _ source.Source = (*Source)(nil)

package dbclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"noteboard/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoConnector implements Connector for MongoDB. Queries are JSON
// documents rather than SQL; see mongoQuery for the shape.
type mongoConnector struct {
	client *mongo.Client
	dbName string

	mu       sync.Mutex
	cursor   *mongo.Cursor
	rowsRead int
}

// mongoQuery is the JSON document users write instead of SQL. Operation
// defaults to "find"; "aggregate" runs Pipeline and ignores the find fields.
type mongoQuery struct {
	Collection string         `json:"collection"`
	Operation  string         `json:"operation,omitempty"`
	Filter     map[string]any `json:"filter,omitempty"`
	Projection map[string]any `json:"projection,omitempty"`
	Sort       map[string]any `json:"sort,omitempty"`
	Pipeline   []any          `json:"pipeline,omitempty"`
}

func openMongo(conn *domain.SourceConnection, password string) (*mongoConnector, error) {
	uri := mongoURI(conn, password)
	dbName := mongoDatabase(conn, uri)

	log.Printf("[mongo] connecting to %s (database %s)", redactPassword(uri, password), dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("dial mongo: %w", err)
	}
	return &mongoConnector{client: client, dbName: dbName}, nil
}

// mongoURI builds the connection string. The host field may already hold a
// complete URI (Atlas hands out mongodb+srv:// strings); those pass through
// with the password placeholder filled in and the database path appended.
func mongoURI(conn *domain.SourceConnection, password string) string {
	if strings.HasPrefix(conn.Host, "mongodb://") || strings.HasPrefix(conn.Host, "mongodb+srv://") {
		uri := conn.Host
		if password != "" {
			for _, ph := range []string{"<password>", "<db_password>"} {
				uri = strings.ReplaceAll(uri, ph, password)
			}
		}
		if conn.Database != "" && !strings.Contains(uri, "/"+conn.Database) {
			if q := strings.Index(uri, "?"); q != -1 {
				uri = strings.TrimRight(uri[:q], "/") + "/" + conn.Database + uri[q:]
			} else {
				uri = strings.TrimRight(uri, "/") + "/" + conn.Database
			}
		}
		return uri
	}

	port := conn.Port
	if port == 0 {
		port = 27017
	}
	uri := fmt.Sprintf("mongodb://%s:%d", conn.Host, port)
	if conn.Username != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", conn.Username, password, conn.Host, port)
	}

	// extraJson carries driver options like authSource and replicaSet.
	if conn.ExtraJSON != "" && conn.ExtraJSON != "{}" {
		var extras map[string]string
		if json.Unmarshal([]byte(conn.ExtraJSON), &extras) == nil && len(extras) > 0 {
			params := make([]string, 0, len(extras))
			for k, v := range extras {
				params = append(params, k+"="+v)
			}
			sort.Strings(params)
			uri += "?" + strings.Join(params, "&")
		}
	}
	return uri
}

// mongoDatabase resolves the database name: the explicit field wins, then
// the path segment of the URI, then Mongo's conventional "test".
func mongoDatabase(conn *domain.SourceConnection, uri string) string {
	if conn.Database != "" {
		return conn.Database
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(uri, "mongodb+srv://"), "mongodb://")
	if at := strings.Index(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	if slash := strings.Index(rest, "/"); slash != -1 {
		name := rest[slash+1:]
		if q := strings.Index(name, "?"); q != -1 {
			name = name[:q]
		}
		if name != "" {
			return name
		}
	}
	return "test"
}

func redactPassword(uri, password string) string {
	if password == "" {
		return uri
	}
	return strings.ReplaceAll(uri, password, "***")
}

// ejsonMap reparses a JSON-decoded map through the driver's Extended JSON
// reader so type wrappers like $oid and $date become real BSON values.
// When the reparse fails the plain map is used as-is.
func ejsonMap(field map[string]any) map[string]any {
	if field == nil {
		return nil
	}
	raw, err := json.Marshal(field)
	if err != nil {
		return field
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		log.Printf("[mongo] extended JSON parse: %v", err)
		return field
	}
	out := make(map[string]any, len(doc))
	for _, e := range doc {
		out[e.Key] = e.Value
	}
	return out
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoConnector) Execute(ctx context.Context, query string, fetchSize int) (*QueryPage, error) {
	var mq mongoQuery
	if err := json.Unmarshal([]byte(query), &mq); err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if mq.Collection == "" {
		return nil, fmt.Errorf("query needs a 'collection' field")
	}
	// Filter, projection, and sort get a second, Extended JSON pass.
	mq.Filter = ejsonMap(mq.Filter)
	mq.Projection = ejsonMap(mq.Projection)
	mq.Sort = ejsonMap(mq.Sort)

	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCursorLocked(ctx)

	coll := m.client.Database(m.dbName).Collection(mq.Collection)

	op := mq.Operation
	if op == "" {
		op = "find"
	}

	qctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var cursor *mongo.Cursor
	var err error
	switch op {
	case "find":
		opts := options.Find().SetBatchSize(int32(fetchSize))
		if mq.Projection != nil {
			opts.SetProjection(mq.Projection)
		}
		if mq.Sort != nil {
			opts.SetSort(mq.Sort)
		}
		filter := mq.Filter
		if filter == nil {
			filter = map[string]any{}
		}
		cursor, err = coll.Find(qctx, filter, opts)
	case "aggregate":
		pipeline := mq.Pipeline
		if pipeline == nil {
			pipeline = []any{}
		}
		cursor, err = coll.Aggregate(qctx, pipeline)
	default:
		return nil, fmt.Errorf("source connections accept read operations only (find, aggregate); got %q", op)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.cursor = cursor
	m.rowsRead = 0
	return m.readMongoPageLocked(qctx, fetchSize)
}

func (m *mongoConnector) FetchMore(ctx context.Context, fetchSize int) (*QueryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor == nil {
		return nil, fmt.Errorf("no open cursor; run a query first")
	}
	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}
	return m.readMongoPageLocked(ctx, fetchSize)
}

// readMongoPageLocked drains up to limit documents off the cursor and
// flattens them into a column grid. Caller holds m.mu.
func (m *mongoConnector) readMongoPageLocked(ctx context.Context, limit int) (*QueryPage, error) {
	var docs []bson.M
	for len(docs) < limit && m.cursor.Next(ctx) {
		var doc bson.M
		if err := m.cursor.Decode(&doc); err != nil {
			m.closeCursorLocked(ctx)
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := m.cursor.Err(); err != nil {
		m.closeCursorLocked(ctx)
		return nil, fmt.Errorf("cursor: %w", err)
	}
	m.rowsRead += len(docs)

	columns := columnsOf(docs)
	var rows [][]any
	for _, doc := range docs {
		row := make([]any, len(columns))
		for i, col := range columns {
			if v, ok := doc[col]; ok {
				row[i] = fmt.Sprintf("%v", v)
			}
		}
		rows = append(rows, row)
	}

	more := len(docs) == limit
	if !more {
		m.closeCursorLocked(ctx)
	}

	return &QueryPage{
		Columns:      columns,
		Rows:         rows,
		TotalFetched: m.rowsRead,
		HasMore:      more,
	}, nil
}

// columnsOf is the union of field names across the page, _id first and the
// rest alphabetical. Documents in one collection rarely share an exact
// shape, so the header is recomputed per page.
func columnsOf(docs []bson.M) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, doc := range docs {
		for k := range doc {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		a, b := cols[i], cols[j]
		if a == "_id" || b == "_id" {
			return a == "_id"
		}
		return a < b
	})
	return cols
}

func (m *mongoConnector) Introspect(ctx context.Context) (*SchemaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db := m.client.Database(m.dbName)
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	info := &SchemaInfo{}
	for _, name := range names {
		table := TableInfo{Name: name}
		// One sampled document stands in for the collection's schema.
		var doc bson.M
		if err := db.Collection(name).FindOne(ctx, bson.M{}).Decode(&doc); err == nil {
			keys := make([]string, 0, len(doc))
			for k := range doc {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				table.Columns = append(table.Columns, ColumnInfo{Name: k, Type: fmt.Sprintf("%T", doc[k])})
			}
		}
		info.Tables = append(info.Tables, table)
	}
	return info, nil
}

func (m *mongoConnector) Close() error {
	m.mu.Lock()
	m.closeCursorLocked(context.Background())
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *mongoConnector) closeCursorLocked(ctx context.Context) {
	if m.cursor != nil {
		m.cursor.Close(ctx)
		m.cursor = nil
	}
}

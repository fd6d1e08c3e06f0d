// Package plebiscite is the optional MongoDB-backed Erowid
// experience-report connector. Bifrost treats it as an opaque side
// datasource: it reads an existing collection and never writes to it.
package plebiscite

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/psychonautwiki/bifrost/internal/bferrors"
	"github.com/psychonautwiki/bifrost/internal/metrics"
	"github.com/psychonautwiki/bifrost/internal/model"
	"github.com/psychonautwiki/bifrost/internal/retry"
)

// Client wraps a single MongoDB collection of Erowid experience reports.
type Client struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

// Connect establishes a connection-pooled client and verifies it with a
// ping, retrying the whole connect-then-ping sequence with exponential
// backoff: this first-use handshake is the one connection-establishment
// path bifrost retries this way, as opposed to the upstream connector's
// per-request linear backoff (see internal/upstream).
func Connect(ctx context.Context, uri, database, collection string, m *metrics.Metrics) (*Client, error) {
	var client *mongo.Client

	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx, nil); err != nil {
			return err
		}

		client = c
		return nil
	})
	if err != nil {
		return nil, bferrors.WrapFatal(err, "plebiscite", "Connect", "connect to mongo")
	}

	return &Client{
		collection: client.Database(database).Collection(collection),
		metrics:    m,
	}, nil
}

// Query returns experience reports sorted by meta.published descending.
// When substance is non-nil, results are filtered to
// substanceInfo.substance == *substance; when nil, no filter is applied
// and all reports are eligible (the correct behavior per §9 — earlier
// variants inverted this check and the filter silently never applied).
func (c *Client) Query(ctx context.Context, substance *string, limit, offset int64) ([]model.ErowidExperience, error) {
	start := time.Now()

	filter := buildFilter(substance)

	findOpts := options.Find().
		SetSort(bson.D{{Key: "meta.published", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cur, err := c.collection.Find(ctx, filter, findOpts)
	if err != nil {
		c.recordQuery("error", start)
		return nil, bferrors.WrapTransient(err, "plebiscite", "Query", "find experiences")
	}
	defer cur.Close(ctx)

	var docs []model.ErowidExperience
	if err := cur.All(ctx, &docs); err != nil {
		c.recordQuery("error", start)
		return nil, bferrors.WrapTransient(err, "plebiscite", "Query", "decode experiences")
	}

	c.recordQuery("success", start)
	return docs, nil
}

// buildFilter is split out from Query as a pure function so the
// substance-filter decision (the spot a legacy inverted check used to get
// wrong) is independently testable without a live MongoDB.
func buildFilter(substance *string) bson.M {
	filter := bson.M{}
	if substance != nil {
		filter["substanceInfo.substance"] = *substance
	}
	return filter
}

func (c *Client) recordQuery(outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordPlebisciteQuery(outcome, time.Since(start))
	}
}

package export

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jbadsdata/arc-hacks/internal/catalog"
)

// MongoSink inserts inventory records into a MongoDB collection so that
// repeated runs build up a queryable catalog history.
type MongoSink struct {
	URI        string
	Database   string
	Collection string
}

type recordDoc struct {
	Container         string     `bson:"container"`
	ContainerPath     string     `bson:"container_path"`
	ContainerModified *time.Time `bson:"container_modified,omitempty"`
	FeatureDataset    string     `bson:"feature_dataset,omitempty"`
	Dataset           string     `bson:"dataset"`
	DatasetPath       string     `bson:"dataset_path"`
	DatasetType       string     `bson:"dataset_type,omitempty"`
	GeometryType      string     `bson:"geometry_type,omitempty"`
	FeatureCount      *int64     `bson:"feature_count,omitempty"`
	SpatialReference  string     `bson:"spatial_reference,omitempty"`
	Extent            string     `bson:"extent,omitempty"`
	ScannedAt         time.Time  `bson:"scanned_at"`
}

// Write inserts one document per record, stamped with the scan time.
func (s *MongoSink) Write(ctx context.Context, records []catalog.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	client, err := mongo.Connect(options.Client().ApplyURI(s.URI))
	if err != nil {
		return fmt.Errorf("connecting to catalog sink: %w", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("pinging catalog sink: %w", err)
	}

	now := time.Now()
	docs := make([]any, 0, len(records))
	for _, r := range records {
		docs = append(docs, toDoc(r, now))
	}

	coll := client.Database(s.Database).Collection(s.Collection)
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting catalog records: %w", err)
	}
	return nil
}

func toDoc(r catalog.Record, scannedAt time.Time) recordDoc {
	doc := recordDoc{
		Container:        r.ContainerName,
		ContainerPath:    r.ContainerPath,
		FeatureDataset:   r.FeatureDataset,
		Dataset:          r.DatasetName,
		DatasetPath:      r.DatasetPath,
		DatasetType:      r.DatasetType,
		GeometryType:     r.GeometryType,
		FeatureCount:     r.FeatureCount,
		SpatialReference: r.SpatialReference,
		Extent:           catalog.FormatExtent(r.Extent),
		ScannedAt:        scannedAt,
	}
	if !r.ContainerModified.IsZero() {
		t := r.ContainerModified
		doc.ContainerModified = &t
	}
	return doc
}

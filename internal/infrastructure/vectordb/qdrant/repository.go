// Package qdrant provides a ports.SearchIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
)

// pointNamespace seeds the deterministic point IDs of companies.
var pointNamespace = uuid.MustParse("5b0c7a52-8f1e-4d6b-9a43-2f6f0e7c1d90")

// Repository implements ports.SearchIndex using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository for the named collection.
func NewRepository(cfg config.QdrantConfig, collection string) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: collection,
		conn:       conn,
	}, nil
}

func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// Collection returns the collection name.
func (r *Repository) Collection() string {
	return r.collection
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection drops the collection and every point in it.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Upsert stores documents. A company always maps to the same point, so a
// newer snapshot replaces the older one.
func (r *Repository) Upsert(ctx context.Context, docs []ports.IndexedCompany) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(docs))
	for i := range docs {
		points = append(points, toPoint(&docs[i]))
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Search returns the company IDs nearest to the embedding, best first.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]entities.CompanyID, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Include{
				Include: &pb.PayloadIncludeSelector{Fields: []string{"company_id"}},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToIDs(resp.Result), nil
}

// Count returns the number of indexed companies.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.points.Count(ctx, &pb.CountPoints{
		CollectionName: r.collection,
		Exact:          pb.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("counting points: %w", err)
	}

	return resp.Result.Count, nil
}

// PointID returns the point ID of a company.
func PointID(id entities.CompanyID) string {
	return uuid.NewSHA1(pointNamespace, []byte(strconv.FormatInt(int64(id), 10))).String()
}

func toPoint(doc *ports.IndexedCompany) *pb.PointStruct {
	f := doc.Flags
	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(doc.CompanyID)},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: doc.Embedding},
			},
		},
		Payload: map[string]*pb.Value{
			"company_id":         intValue(int64(doc.CompanyID)),
			"revision_id":        intValue(int64(doc.RevisionID)),
			"name":               stringValue(doc.Name),
			"text":               stringValue(doc.Text),
			"status":             stringValue(f.Status.String()),
			"has_bo":             boolValue(f.HasBo),
			"is_mass_registered": boolValue(f.IsMassRegistered),
			"has_pep_owner":      boolValue(f.HasPepOwner),
			"on_occupied_soil":   boolValue(f.HasBoOnOccupiedSoil),
			"self_owned":         boolValue(f.SelfOwned),
		},
	}
}

func scoredPointsToIDs(points []*pb.ScoredPoint) []entities.CompanyID {
	ids := make([]entities.CompanyID, 0, len(points))
	for _, p := range points {
		v, ok := p.GetPayload()["company_id"]
		if !ok {
			continue
		}
		ids = append(ids, entities.CompanyID(v.GetIntegerValue()))
	}
	return ids
}

func intValue(v int64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: v}}
}

func stringValue(v string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
}

func boolValue(v bool) *pb.Value {
	return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: v}}
}

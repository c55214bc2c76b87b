package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
)

// projectDoc is the persisted shape of a project. Collaborators are stored
// as a subdocument keyed by the escaped email.
type projectDoc struct {
	Key           string            `bson:"projectKey"`
	Name          string            `bson:"projectName"`
	Owner         string            `bson:"owner"`
	XML           string            `bson:"xml"`
	Pages         string            `bson:"pages"`
	MarkdownPages string            `bson:"markdownPages"`
	Collaborators map[string]string `bson:"collaborators"`
	Public        bool              `bson:"public"`
	Trashed       bool              `bson:"trashed"`
	CreatedAt     time.Time         `bson:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at"`
}

type ProjectRepository struct {
	col *mongo.Collection
}

// NewProjectRepository wires the projects collection and ensures the
// unique key index exists.
func NewProjectRepository(ctx context.Context, db *mongo.Database) (*ProjectRepository, error) {
	col := db.Collection("projects")
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "projectKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &ProjectRepository{col: col}, nil
}

// ListByMember runs the owner-or-collaborator membership query as a single
// $or predicate, matching documents where the caller owns the project or
// has a non-null entry under their escaped email.
func (r *ProjectRepository) ListByMember(ctx context.Context, email string) ([]*domain.Project, error) {
	collabField := "collaborators." + domain.EncodeCollabKey(email).String()
	filter := bson.M{"$or": bson.A{
		bson.M{"owner": email},
		bson.M{collabField: bson.M{"$exists": true, "$ne": nil}},
	}}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []*domain.Project
	for cur.Next(ctx) {
		var doc projectDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		p, err := docToProject(doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, cur.Err()
}

func (r *ProjectRepository) GetByKey(ctx context.Context, key domain.ProjectKey) (*domain.Project, error) {
	var doc projectDoc
	err := r.col.FindOne(ctx, bson.M{"projectKey": key.String()}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return docToProject(doc)
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	_, err := r.col.InsertOne(ctx, projectToDoc(project))
	return err
}

// Update replaces the whole document. Two concurrent metadata updates to
// the same project are last-writer-wins.
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"projectKey": project.Key.String()}, projectToDoc(project))
	return err
}

func (r *ProjectRepository) Delete(ctx context.Context, key domain.ProjectKey) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"projectKey": key.String()})
	return err
}

func projectToDoc(p *domain.Project) projectDoc {
	collabs := make(map[string]string, len(p.Collaborators))
	for k, lvl := range p.Collaborators {
		collabs[k.String()] = lvl.String()
	}
	return projectDoc{
		Key:           p.Key.String(),
		Name:          p.Name,
		Owner:         p.Owner,
		XML:           p.XML,
		Pages:         p.Pages,
		MarkdownPages: p.MarkdownPages,
		Collaborators: collabs,
		Public:        p.Public,
		Trashed:       p.Trashed,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func docToProject(doc projectDoc) (*domain.Project, error) {
	collabs := make(map[domain.CollabKey]domain.Level, len(doc.Collaborators))
	for k, v := range doc.Collaborators {
		lvl, err := domain.ParseLevel(v)
		if err != nil {
			return nil, err
		}
		collabs[domain.CollabKey(k)] = lvl
	}
	return &domain.Project{
		Key:           domain.ProjectKey(doc.Key),
		Name:          doc.Name,
		Owner:         doc.Owner,
		XML:           doc.XML,
		Pages:         doc.Pages,
		MarkdownPages: doc.MarkdownPages,
		Collaborators: collabs,
		Public:        doc.Public,
		Trashed:       doc.Trashed,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

// Ensure ProjectRepository implements ports.ProjectRepository.
var _ ports.ProjectRepository = (*ProjectRepository)(nil)

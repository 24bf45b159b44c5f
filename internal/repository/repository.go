package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Spec describes how filters of type F map onto the table of T.
type Spec[T any, F Filter] struct {
	// Resource names the entity in errors ("company", "job").
	Resource string
	// Exact returns column -> value equality predicates. Empty values are skipped.
	Exact func(F) map[string]string
	// Search lists the qualified columns matched by Query.Search.
	Search []string
	// Joins are raw JOIN clauses needed by Search. They must join to-one
	// relations only, otherwise counts would include duplicates.
	Joins []string
	// Preload lists relations loaded on reads.
	Preload []string
}

// Repository provides CRUD and paginated filtering over one entity. The zero
// value is not usable; build one with New.
type Repository[T any, F Filter] struct {
	db     *gorm.DB
	spec   Spec[T, F]
	table  string
	pk     string
	fields map[string]*schema.Field
}

// New parses T's schema once and returns a repository bound to db.
func New[T any, F Filter](db *gorm.DB, spec Spec[T, F]) (*Repository[T, F], error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", spec.Resource, err)
	}
	if stmt.Schema.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("%s: model has no primary key", spec.Resource)
	}
	return &Repository[T, F]{
		db:     db,
		spec:   spec,
		table:  stmt.Schema.Table,
		pk:     stmt.Schema.PrioritizedPrimaryField.DBName,
		fields: fieldIndex(stmt.Schema),
	}, nil
}

// WithTx returns a copy of the repository whose operations run on tx. The
// receiver is left untouched.
func (r *Repository[T, F]) WithTx(tx *gorm.DB) *Repository[T, F] {
	bound := *r
	bound.db = tx
	return &bound
}

// Resource returns the entity name used in errors.
func (r *Repository[T, F]) Resource() string { return r.spec.Resource }

// Create inserts rec and returns it with its assigned id and timestamps.
// Associations set on rec are not written.
func (r *Repository[T, F]) Create(ctx context.Context, rec *T) (*T, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByID loads a record by primary key.
func (r *Repository[T, F]) FindByID(ctx context.Context, id string) (*T, error) {
	var out T
	q := r.preload(r.db.WithContext(ctx).Model(new(T))).Where(r.pkColumn()+" = ?", id)
	if err := q.Take(&out).Error; err != nil {
		return nil, r.translate(err, id)
	}
	return &out, nil
}

// FindOne returns the first record matching f. Without a sort the store's
// default ordering decides which record is first.
func (r *Repository[T, F]) FindOne(ctx context.Context, f F) (*T, error) {
	q, err := r.order(r.scoped(ctx, f), f.Params().Sort, false)
	if err != nil {
		return nil, err
	}
	var out T
	if err := r.preload(q).Take(&out).Error; err != nil {
		return nil, r.translate(err, "")
	}
	return &out, nil
}

// FindMany returns one page of records matching f together with the total
// count. Both queries share the predicate but not a snapshot.
func (r *Repository[T, F]) FindMany(ctx context.Context, f F) (*Page[T], error) {
	page, limit, offset := f.Params().Window()

	q, err := r.order(r.scoped(ctx, f), f.Params().Sort, true)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.scoped(ctx, f).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if total > int64(offset) {
		if err := r.preload(q).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
			return nil, err
		}
	}
	return NewPage(items, total, page, limit), nil
}

// Update merges patch into the record. Keys may be json names, column names
// or Go field names. An empty patch returns the record without writing.
func (r *Repository[T, F]) Update(ctx context.Context, id string, patch map[string]any) (*T, error) {
	columns, err := r.columns(patch)
	if err != nil {
		return nil, err
	}
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return existing, nil
	}
	err = r.db.WithContext(ctx).Model(new(T)).Where(r.pkColumn()+" = ?", id).Updates(columns).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes the record. A missing id yields a NotFoundError.
func (r *Repository[T, F]) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where(r.pkColumn()+" = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, &NotFoundError{Resource: r.spec.Resource, ID: id}
	}
	return true, nil
}

// scoped builds the joins and the WHERE clause for f. Each call returns a new
// chain so the count and page queries never share statement state.
func (r *Repository[T, F]) scoped(ctx context.Context, f F) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	for _, join := range r.spec.Joins {
		q = q.Joins(join)
	}

	if r.spec.Exact != nil {
		exact := r.spec.Exact(f)
		cols := make([]string, 0, len(exact))
		for col, v := range exact {
			if v != "" {
				cols = append(cols, col)
			}
		}
		sort.Strings(cols)
		for _, col := range cols {
			q = q.Where(r.qualify(col)+" = ?", exact[col])
		}
	}

	if term := strings.TrimSpace(f.Params().Search); term != "" && len(r.spec.Search) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		ors := make([]string, len(r.spec.Search))
		args := make([]any, len(r.spec.Search))
		for i, col := range r.spec.Search {
			ors[i] = "LOWER(" + r.qualify(col) + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		q = q.Where("("+strings.Join(ors, " OR ")+")", args...)
	}
	return q
}

func (r *Repository[T, F]) order(q *gorm.DB, s Sort, withDefault bool) (*gorm.DB, error) {
	fields, err := s.Fields()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		if created, ok := r.fields["created_at"]; ok && withDefault {
			q = q.Order(clause.OrderByColumn{Column: r.column(created), Desc: true})
		}
		return q, nil
	}
	for _, sf := range fields {
		field, ok := r.fields[sf.Field]
		if !ok {
			return nil, &InvalidFieldError{Field: sf.Field, Reason: "cannot sort " + r.spec.Resource + " by it"}
		}
		q = q.Order(clause.OrderByColumn{Column: r.column(field), Desc: sf.Direction == Desc})
	}
	return q, nil
}

func (r *Repository[T, F]) columns(patch map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(patch))
	for key, value := range patch {
		field, ok := r.fields[key]
		if !ok {
			return nil, &InvalidFieldError{Field: key, Reason: "unknown " + r.spec.Resource + " field"}
		}
		if field.PrimaryKey || field.AutoCreateTime > 0 || field.AutoUpdateTime > 0 || !field.Updatable {
			return nil, &InvalidFieldError{Field: key, Reason: "field is managed by the store"}
		}
		out[field.DBName] = value
	}
	return out, nil
}

func (r *Repository[T, F]) preload(q *gorm.DB) *gorm.DB {
	for _, rel := range r.spec.Preload {
		q = q.Preload(rel)
	}
	return q
}

func (r *Repository[T, F]) translate(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: r.spec.Resource, ID: id}
	}
	return err
}

func (r *Repository[T, F]) pkColumn() string { return r.table + "." + r.pk }

func (r *Repository[T, F]) column(f *schema.Field) clause.Column {
	return clause.Column{Table: r.table, Name: f.DBName}
}

func (r *Repository[T, F]) qualify(col string) string {
	if strings.Contains(col, ".") {
		return col
	}
	return r.table + "." + col
}

// fieldIndex maps every accepted spelling of a column to its schema field:
// Go name, column name, lowerCamel Go name and json name.
func fieldIndex(s *schema.Schema) map[string]*schema.Field {
	out := make(map[string]*schema.Field, len(s.FieldsByDBName)*4)
	for _, f := range s.FieldsByDBName {
		out[f.Name] = f
		out[f.DBName] = f
		out[strings.ToLower(f.Name[:1])+f.Name[1:]] = f
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
			out[name] = f
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

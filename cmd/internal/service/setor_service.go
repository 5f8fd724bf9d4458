package service

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"setores/cmd/internal/contract"
	"setores/cmd/internal/domain/directory"
	"setores/cmd/internal/domain/entity"
	"setores/cmd/internal/utils"
	"setores/cmd/internal/utils/apierror"
	"setores/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type ChangeLogRepository interface {
	Save(entry *entity.ChangeLog) error
	FindBySlug(slug string, limit int) ([]*entity.ChangeLog, error)
}

// MutationRecorder counts successful mutations by operation.
type MutationRecorder interface {
	Mutation(operation string)
}

type DefaultSetorService struct {
	Store    *directory.Store
	Changes  ChangeLogRepository
	Metrics  MutationRecorder
	Validate *validator.Validate
	Now      func() time.Time
}

// NewSetorService wires the directory store. changes and metrics may be nil.
func NewSetorService(
	store *directory.Store,
	changes ChangeLogRepository,
	metrics MutationRecorder,
	validate *validator.Validate,
) *DefaultSetorService {
	return &DefaultSetorService{
		Store:    store,
		Changes:  changes,
		Metrics:  metrics,
		Validate: validate,
		Now:      time.Now,
	}
}

func (s *DefaultSetorService) ListSetores(q *contract.ListSetoresQuery, admin bool) (any, apierror.ErrorResponse) {
	items := s.Store.Search(q.Query, q.Bloco, q.Andar)
	if !utils.IsTruthy(q.Paged) {
		return contract.NewSetorResponses(items, admin), nil
	}

	page := max(1, atoiOr(q.Page, 1))
	size := min(contract.MaxPageSize, max(1, atoiOr(q.PageSize, contract.DefaultPageSize)))

	// past the last page, checked before multiplying so huge pages cannot overflow
	start := len(items)
	if page-1 <= len(items)/size {
		start = min(len(items), (page-1)*size)
	}
	end := min(len(items), start+size)
	return &contract.PagedSetoresResponse{
		Items:    contract.NewSetorResponses(items[start:end], admin),
		Total:    len(items),
		Page:     page,
		PageSize: size,
	}, nil
}

func (s *DefaultSetorService) GetSetor(idOrSlug string, admin bool) (*contract.SetorResponse, apierror.ErrorResponse) {
	st, ok := s.Store.Lookup(idOrSlug)
	if !ok {
		return nil, apierror.NotFoundError
	}
	return contract.NewSetorResponse(st, admin), nil
}

func (s *DefaultSetorService) CreateSetor(req *contract.CreateSetorRequest) (*contract.SetorResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, setorValidationError(err)
	}

	st := s.Store.Create(req.Patch())
	s.record(st, entity.OperationCreate, req)
	return contract.NewSetorResponse(st, true), nil
}

func (s *DefaultSetorService) UpdateSetor(idOrSlug string, req *contract.UpdateSetorRequest) (*contract.SetorResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	utils.Sanitize(&req.UpdateContactsRequest)
	if err := s.Validate.Struct(req); err != nil {
		return nil, setorValidationError(err)
	}

	st, ok := s.Store.UpdatePartial(s.Store.ResolveSlug(idOrSlug), req.Patch())
	if !ok {
		return nil, apierror.NotFoundError
	}
	s.record(st, entity.OperationUpdate, req)
	return contract.NewSetorResponse(st, true), nil
}

func (s *DefaultSetorService) UpdateContacts(idOrSlug string, req *contract.UpdateContactsRequest) (*contract.SetorResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, setorValidationError(err)
	}

	st, ok := s.Store.UpdateContacts(s.Store.ResolveSlug(idOrSlug), req.Patch())
	if !ok {
		return nil, apierror.NotFoundError
	}
	s.record(st, entity.OperationContacts, req)
	return contract.NewSetorResponse(st, true), nil
}

func (s *DefaultSetorService) RegisterAccess(idOrSlug string, req *contract.RamalAccessRequest) (*contract.RamalAccessResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.MissingRamalError
	}

	st, ok := s.Store.IncrementAccess(s.Store.ResolveSlug(idOrSlug), req.Numero.String())
	if !ok {
		return nil, apierror.NotFoundError
	}
	s.record(st, entity.OperationAccess, req)
	return &contract.RamalAccessResponse{OK: true, AcessosRamais: st.AcessosRamais}, nil
}

func (s *DefaultSetorService) SetFavorite(idOrSlug string, req *contract.RamalFavoriteRequest) (*contract.RamalFavoriteResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.MissingFavoriteFieldsError
	}

	st, ok := s.Store.SetFavorite(s.Store.ResolveSlug(idOrSlug), req.Numero.String(), *req.Favorite)
	if !ok {
		return nil, apierror.NotFoundError
	}
	s.record(st, entity.OperationFavorite, req)
	return &contract.RamalFavoriteResponse{OK: true, FavoritosRamais: st.FavoritosRamais}, nil
}

// TopRamais lists the most accessed extensions of a setor, ties by numero.
func (s *DefaultSetorService) TopRamais(idOrSlug, limit string) ([]*contract.TopRamalResponse, apierror.ErrorResponse) {
	st, ok := s.Store.Lookup(idOrSlug)
	if !ok {
		return nil, apierror.NotFoundError
	}

	n := min(contract.MaxTopLimit, max(1, atoiOr(limit, contract.DefaultTopLimit)))
	top := make([]*contract.TopRamalResponse, 0, len(st.AcessosRamais))
	for numero, count := range st.AcessosRamais {
		top = append(top, &contract.TopRamalResponse{Numero: numero, Count: count})
	}
	slices.SortFunc(top, func(a, b *contract.TopRamalResponse) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Numero, b.Numero)
	})
	return top[:min(n, len(top))], nil
}

// ImportJSON accepts either raw dataset entries (with a nested "setor"
// object) or flattened setores. The first element decides the shape.
func (s *DefaultSetorService) ImportJSON(body []byte, mode string, persist bool) (*contract.ImportResponse, apierror.ErrorResponse) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, apierror.ImportBodyError
	}

	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, apierror.ImportBodyError
	}

	m := directory.ParseImportMode(mode)
	if len(probe) > 0 && isRawShape(probe[0]) {
		var items []entity.RawSetor
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, apierror.ImportBodyError
		}
		s.Store.ImportRaw(items, m)
	} else {
		var items []entity.SetorImport
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, apierror.ImportBodyError
		}
		s.Store.ImportNormalized(items, m)
	}
	return s.imported(m, len(probe), persist), nil
}

func (s *DefaultSetorService) ImportCSV(body []byte, mode string, persist bool) (*contract.ImportResponse, apierror.ErrorResponse) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apierror.MissingCSVBodyError
	}

	items, err := directory.ParseCSV(bytes.NewReader(body))
	if errors.Is(err, directory.ErrCSVTooShort) {
		return nil, apierror.CSVTooShortError
	}
	if err != nil {
		log.Warnf("failed to parse csv import: %v", err)
		return nil, apierror.MalformedBodyError
	}

	m := directory.ParseImportMode(mode)
	s.Store.ImportNormalized(items, m)
	return s.imported(m, len(items), persist), nil
}

func (s *DefaultSetorService) imported(mode directory.ImportMode, received int, persist bool) *contract.ImportResponse {
	resp := &contract.ImportResponse{
		OK:    true,
		Mode:  string(mode),
		Count: s.Store.Len(),
		Stats: s.Store.Statistics(),
	}
	if persist {
		n := s.Store.PersistAll()
		resp.Persisted = &n
	}

	s.record(nil, entity.OperationImport, importPayload{Mode: string(mode), Received: received, Persist: persist})
	return resp
}

type importPayload struct {
	Mode     string `json:"mode"`
	Received int    `json:"received"`
	Persist  bool   `json:"persist"`
}

// ExportFile is a downloadable snapshot of the directory.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

func (s *DefaultSetorService) Export(format string) (*ExportFile, apierror.ErrorResponse) {
	name := "setores_" + utils.FileTimestamp(s.Now())

	if strings.EqualFold(strings.TrimSpace(format), "csv") {
		return &ExportFile{
			Filename:    name + ".csv",
			ContentType: "text/csv; charset=utf-8",
			Body:        []byte(s.Store.ToCSV()),
		}, nil
	}

	data, err := json.Marshal(s.Store.All())
	if err != nil {
		log.Errorf("failed to export setores as json: %v", err)
		return nil, apierror.InternalServerError
	}
	return &ExportFile{
		Filename:    name + ".json",
		ContentType: "application/json; charset=utf-8",
		Body:        data,
	}, nil
}

func (s *DefaultSetorService) Statistics() entity.Statistics {
	return s.Store.Statistics()
}

func (s *DefaultSetorService) Blocos() []string {
	return s.Store.Blocos()
}

func (s *DefaultSetorService) Andares() []string {
	return s.Store.Andares()
}

func (s *DefaultSetorService) History(idOrSlug, limit string) ([]*contract.ChangeLogResponse, apierror.ErrorResponse) {
	if s.Changes == nil {
		return nil, apierror.ChangeLogDisabledError
	}

	st, ok := s.Store.Lookup(idOrSlug)
	if !ok {
		return nil, apierror.NotFoundError
	}

	n := min(contract.MaxHistoryLimit, max(1, atoiOr(limit, contract.DefaultHistoryLimit)))
	entries, err := s.Changes.FindBySlug(st.Slug, n)
	if err != nil {
		log.Errorf("failed to fetch history of %s: %v", st.Slug, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.ChangeLogResponse, len(entries))
	for i, e := range entries {
		resp[i] = &contract.ChangeLogResponse{
			ID:        e.ID,
			Operation: string(e.Operation),
			Payload:   json.RawMessage(e.Payload),
			Source:    e.Source,
			CreatedAt: utils.FormatEpoch(e.CreatedAt),
		}
	}
	return resp, nil
}

// record appends the mutation to the change log. st is nil for imports.
func (s *DefaultSetorService) record(st *entity.Setor, op entity.ChangeOperation, payload any) {
	if s.Metrics != nil {
		s.Metrics.Mutation(strings.ToLower(string(op)))
	}
	if s.Changes == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to encode %s change payload: %v", op, err)
		return
	}

	entry := &entity.ChangeLog{
		ID:        uid.Generate(),
		Operation: op,
		Payload:   string(data),
		CreatedAt: s.Now().UnixMilli(),
	}
	if st != nil {
		entry.SetorID = st.ID
		entry.Slug = st.Slug
	}
	if err := s.Changes.Save(entry); err != nil {
		log.Warnf("failed to record %s change: %v", op, err)
	}
}

// setorValidationError keeps the two messages clients already know for the
// most common mistakes and falls back to the field-by-field report.
func setorValidationError(err error) apierror.ErrorResponse {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			switch fe.Field() {
			case "nome", "sigla":
				if fe.Tag() == "notblank" {
					return apierror.MissingNomeSiglaError
				}
			case "email":
				return apierror.InvalidEmailError
			}
		}
	}

	if structured := apierror.FromValidationError(err); structured != nil {
		return structured
	}
	log.Errorf("unexpected validation failure: %v", err)
	return apierror.InternalServerError
}

func isRawShape(item map[string]json.RawMessage) bool {
	v, ok := item["setor"]
	return ok && len(bytes.TrimSpace(v)) > 0 && bytes.TrimSpace(v)[0] == '{'
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

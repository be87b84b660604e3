package provision_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/modules/mddispatch"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/services/svprovision"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/ginx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	provisionhandler "github.com/MironAlikc/erpmax-orchestrator/internal/app/server/handlers/provision"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/server/routers"
)

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*etjob.Job
}

func (r *memJobRepo) Create(ctx context.Context, job *etjob.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) GetByID(ctx context.Context, jobID string) (*etjob.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.jobs[jobID]; ok {
		cp := *stored
		return &cp, nil
	}
	return nil, errorx.ErrJobNotFound
}

func (r *memJobRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*etjob.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*etjob.Job
	for _, job := range r.jobs {
		if job.TenantID == tenantID {
			cp := *job
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memJobRepo) Update(ctx context.Context, job *etjob.Job) error {
	return r.Create(ctx, job)
}

func (r *memJobRepo) UpdateFromStatus(ctx context.Context, job *etjob.Job, prev ...etjob.JobStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[job.ID]
	if !ok {
		return false, nil
	}
	for _, p := range prev {
		if stored.Status == p {
			cp := *job
			r.jobs[job.ID] = &cp
			return true, nil
		}
	}
	return false, nil
}

type memMemberRepo struct {
	roles map[string]ettenant.Role
}

func (r *memMemberRepo) Role(ctx context.Context, tenantID, userID string) (ettenant.Role, error) {
	role, ok := r.roles[tenantID+"/"+userID]
	if !ok {
		return "", errorx.ErrNotMember
	}
	return role, nil
}

type nopQueue struct{}

func (nopQueue) Publish(queue string, data []byte, ttl, delay uint32) error { return nil }

type nopSubscriber struct{}

func (nopSubscriber) Subscribe(ctx context.Context, channel string, timeout time.Duration) (string, error) {
	return "", context.DeadlineExceeded
}

func newTestRouter(t *testing.T) (*gin.Engine, *memJobRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jobRepo := &memJobRepo{jobs: make(map[string]*etjob.Job)}
	memberRepo := &memMemberRepo{roles: map[string]ettenant.Role{
		"t-1/owner-1":  ettenant.RoleOwner,
		"t-1/member-1": ettenant.RoleMember,
	}}

	dispatch := mddispatch.NewDispatchModule(nopQueue{}, nopSubscriber{}, "provisioning_jobs")
	svc := svprovision.NewService(jobRepo, memberRepo, dispatch, &logger.NopLogger{})
	handler := provisionhandler.NewProvisionHandler(svc, &logger.NopLogger{})

	return routers.SetupRoutes(handler, &logger.NopLogger{}), jobRepo
}

func doRequest(router *gin.Engine, method, path, body, tenantID, userID string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateJob(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/provisioning/jobs", `{"job_type":"create_site"}`, "t-1", "owner-1")

	require.Equal(t, http.StatusCreated, w.Code)

	var resp ginx.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 201, resp.Meta.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "create_site", data["job_type"])
	assert.Equal(t, "Queued", data["message"])
}

func TestHandler_CreateJob_InvalidType(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/provisioning/jobs", `{"job_type":"drop_site"}`, "t-1", "owner-1")

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ginx.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Meta.Details)
	assert.Contains(t, resp.Meta.Details[0].Info, "must be one of")
}

func TestHandler_MissingIdentityHeaders(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/provisioning/jobs", `{"job_type":"create_site"}`, "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_MemberCannotCreate(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/provisioning/jobs", `{"job_type":"create_site"}`, "t-1", "member-1")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_GetJob(t *testing.T) {
	router, jobRepo := newTestRouter(t)

	job, err := etjob.NewJob("job-1", "t-1", etjob.TypeCreateSite)
	require.NoError(t, err)
	require.NoError(t, jobRepo.Create(context.Background(), job))

	t.Run("found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/provisioning/jobs/job-1", "", "t-1", "member-1")
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/provisioning/jobs/ghost", "", "t-1", "member-1")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("cross-tenant hidden", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/provisioning/jobs/job-1", "", "t-2", "owner-1")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_ListJobs(t *testing.T) {
	router, jobRepo := newTestRouter(t)

	for _, id := range []string{"job-1", "job-2"} {
		job, err := etjob.NewJob(id, "t-1", etjob.TypeBackupSite)
		require.NoError(t, err)
		require.NoError(t, jobRepo.Create(context.Background(), job))
	}

	w := doRequest(router, http.MethodGet, "/api/v1/provisioning/jobs?limit=10", "", "t-1", "member-1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ginx.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["jobs"], 2)
}

func TestHandler_CancelJob(t *testing.T) {
	router, jobRepo := newTestRouter(t)

	job, err := etjob.NewJob("job-1", "t-1", etjob.TypeCreateSite)
	require.NoError(t, err)
	require.NoError(t, jobRepo.Create(context.Background(), job))

	w := doRequest(router, http.MethodPost, "/api/v1/provisioning/jobs/job-1/cancel", "", "t-1", "owner-1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ginx.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "failed", data["status"])
	assert.Equal(t, "Cancelled by user", data["error"])
}

func TestHandler_RetryJob(t *testing.T) {
	router, jobRepo := newTestRouter(t)

	job, err := etjob.NewJob("job-1", "t-1", etjob.TypeCreateSite)
	require.NoError(t, err)
	require.NoError(t, job.Start(time.Now()))
	job.Fail(time.Now(), "boom")
	require.NoError(t, jobRepo.Create(context.Background(), job))

	w := doRequest(router, http.MethodPost, "/api/v1/provisioning/jobs/job-1/retry", "", "t-1", "owner-1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ginx.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
}

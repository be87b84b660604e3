package provision_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/provision"
)

func newSiteJob(t *testing.T, jobType etjob.JobType) *etjob.Job {
	t.Helper()
	job, err := etjob.NewJob("job-1", "t-1", jobType)
	require.NoError(t, err)
	return job
}

func TestSiteProvisioner_Create(t *testing.T) {
	p := provision.NewSiteProvisioner("create", "erpmax.cloud", 0)
	job := newSiteJob(t, etjob.TypeCreateSite)
	tenant := &ettenant.Tenant{ID: "t-1", Slug: "acme"}

	var progresses []int
	report := func(progress int, message string) error {
		progresses = append(progresses, progress)
		return nil
	}

	siteURL, err := p.Run(context.Background(), job, tenant, report)
	require.NoError(t, err)

	assert.Equal(t, "https://acme.erpmax.cloud", siteURL)
	assert.Equal(t, []int{70}, progresses, "must report one intermediate checkpoint")
}

func TestSiteProvisioner_CreateWithoutTenant(t *testing.T) {
	// 租户缺失时回退用租户ID当子域名
	p := provision.NewSiteProvisioner("create", "erpmax.cloud", 0)
	job := newSiteJob(t, etjob.TypeCreateSite)

	siteURL, err := p.Run(context.Background(), job, nil, func(int, string) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "https://t-1.erpmax.cloud", siteURL)
}

func TestSiteProvisioner_NonCreateActionsNoURL(t *testing.T) {
	for _, action := range []string{"delete", "backup"} {
		p := provision.NewSiteProvisioner(action, "erpmax.cloud", 0)
		job := newSiteJob(t, etjob.TypeDeleteSite)

		siteURL, err := p.Run(context.Background(), job, nil, func(int, string) error { return nil })
		require.NoError(t, err)
		assert.Empty(t, siteURL)
	}
}

func TestSiteProvisioner_ReportErrorStopsRun(t *testing.T) {
	p := provision.NewSiteProvisioner("create", "erpmax.cloud", 0)
	job := newSiteJob(t, etjob.TypeCreateSite)

	wantErr := assert.AnError
	_, err := p.Run(context.Background(), job, nil, func(int, string) error { return wantErr })
	require.ErrorIs(t, err, wantErr)
}

func TestRegistry_Lookup(t *testing.T) {
	registry := provision.DefaultRegistry("erpmax.cloud", 0)

	for _, jobType := range []etjob.JobType{etjob.TypeCreateSite, etjob.TypeDeleteSite, etjob.TypeBackupSite} {
		p, err := registry.Lookup(jobType)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}

	_, err := registry.Lookup("drop_site")
	assert.Error(t, err)
}

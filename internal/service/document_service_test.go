package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edupath/application-management-api/internal/models"
	"github.com/edupath/application-management-api/internal/service/mocks"
	"github.com/edupath/application-management-api/internal/workflow"
)

type trackerFixture struct {
	tracker *DocumentTracker
	apps    *mocks.MockApplicationStore
	docs    *mocks.MockDocumentStore
	audit   *mocks.MockAuditStore
}

func newTrackerFixture() *trackerFixture {
	f := &trackerFixture{
		apps:  &mocks.MockApplicationStore{},
		docs:  &mocks.MockDocumentStore{},
		audit: &mocks.MockAuditStore{},
	}
	f.tracker = NewDocumentTracker(&mocks.StubTxRunner{}, NewApplicationLocks(),
		f.apps, f.docs, f.audit, testLogger())
	return f
}

func stage1Requirements() []models.DocumentRequirement {
	return []models.DocumentRequirement{
		{RequirementID: "REQ-1", ApplicationID: "APP-1", Stage: 1,
			DocumentType: string(workflow.DocPassportCopy), Mandatory: true},
		{RequirementID: "REQ-2", ApplicationID: "APP-1", Stage: 1,
			DocumentType: string(workflow.DocAcademicTranscripts), Mandatory: true},
		{RequirementID: "REQ-3", ApplicationID: "APP-1", Stage: 1,
			DocumentType: string(workflow.DocEnglishCertificate), Mandatory: true},
		{RequirementID: "REQ-4", ApplicationID: "APP-1", Stage: 1,
			DocumentType: string(workflow.DocRecommendationLetter), Mandatory: false},
	}
}

func TestUploadRecordsDocumentAndCounters(t *testing.T) {
	f := newTrackerFixture()
	app := appInStatus(workflow.StageSubmission, workflow.StatusNewApplication)
	f.apps.On("GetByIDWithTx", mock.Anything, mock.Anything, "APP-1").Return(app, nil)
	f.docs.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.docs.On("GetRequirements", mock.Anything, "APP-1", 1).Return(stage1Requirements(), nil)
	// The plain read inside the transaction does not see the new row yet.
	f.docs.On("GetByApplicationID", mock.Anything, "APP-1").Return([]models.Document{}, nil)
	f.apps.On("UpdateWithTx", mock.Anything, mock.Anything, app).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := f.tracker.Upload(context.Background(), "APP-1", &models.DocumentUploadRequest{
		DocumentType: string(workflow.DocPassportCopy),
		FileName:     "passport.pdf",
	}, "partner-1", workflow.RolePartner)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.DocumentID, "DOC-"))
	assert.Equal(t, models.DocumentStatusUploaded, doc.Status)
	require.NotNil(t, doc.FileName)
	assert.Equal(t, "passport.pdf", *doc.FileName)

	// The counters must include the in-flight upload.
	assert.Equal(t, 3, app.RequiredDocumentsCount)
	assert.Equal(t, 1, app.UploadedDocumentsCount)
	assert.Equal(t, 0, app.ApprovedDocumentsCount)
}

func TestUploadRejectsUnknownDocumentType(t *testing.T) {
	f := newTrackerFixture()

	_, err := f.tracker.Upload(context.Background(), "APP-1", &models.DocumentUploadRequest{
		DocumentType: "tax_return",
	}, "partner-1", workflow.RolePartner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
	f.docs.AssertNotCalled(t, "CreateWithTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewApprovesDocument(t *testing.T) {
	f := newTrackerFixture()
	app := appInStatus(workflow.StageSubmission, workflow.StatusDocumentsSubmitted)
	existing := models.Document{
		DocumentID: "DOC-1", ApplicationID: "APP-1",
		DocumentType: string(workflow.DocPassportCopy),
		Status:       models.DocumentStatusUploaded, CreatedTime: 2000,
	}
	f.apps.On("GetByIDWithTx", mock.Anything, mock.Anything, "APP-1").Return(app, nil)
	f.docs.On("GetByID", mock.Anything, "DOC-1").Return(&existing, nil)
	f.docs.On("UpdateStatusWithTx", mock.Anything, mock.Anything, "DOC-1",
		models.DocumentStatusApproved, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.docs.On("GetRequirements", mock.Anything, "APP-1", 1).Return(stage1Requirements(), nil)
	f.docs.On("GetByApplicationID", mock.Anything, "APP-1").Return([]models.Document{existing}, nil)
	f.apps.On("UpdateWithTx", mock.Anything, mock.Anything, app).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := f.tracker.Review(context.Background(), "APP-1", "DOC-1",
		&models.DocumentReviewRequest{Decision: models.DocumentStatusApproved},
		"admin-1", workflow.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, models.DocumentStatusApproved, doc.Status)
	require.NotNil(t, doc.ReviewedBy)
	assert.Equal(t, "admin-1", *doc.ReviewedBy)
	assert.Equal(t, 1, app.ApprovedDocumentsCount)
}

func TestReviewRequiresAdmin(t *testing.T) {
	f := newTrackerFixture()

	_, err := f.tracker.Review(context.Background(), "APP-1", "DOC-1",
		&models.DocumentReviewRequest{Decision: models.DocumentStatusApproved},
		"partner-1", workflow.RolePartner)
	require.Error(t, err)
	assert.Equal(t, workflow.ErrCodeUnauthorizedActor, workflow.CodeOf(err))
}

func TestReviewRejectionRequiresReason(t *testing.T) {
	f := newTrackerFixture()

	_, err := f.tracker.Review(context.Background(), "APP-1", "DOC-1",
		&models.DocumentReviewRequest{Decision: models.DocumentStatusRejected},
		"admin-1", workflow.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, workflow.ErrCodeMissingReason, workflow.CodeOf(err))
}

func TestReviewRejectsInvalidDecision(t *testing.T) {
	f := newTrackerFixture()

	_, err := f.tracker.Review(context.Background(), "APP-1", "DOC-1",
		&models.DocumentReviewRequest{Decision: "maybe"}, "admin-1", workflow.RoleAdmin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid review decision")
}

func TestReviewRejectsForeignDocument(t *testing.T) {
	f := newTrackerFixture()
	app := appInStatus(workflow.StageSubmission, workflow.StatusDocumentsSubmitted)
	f.apps.On("GetByIDWithTx", mock.Anything, mock.Anything, "APP-1").Return(app, nil)
	f.docs.On("GetByID", mock.Anything, "DOC-9").Return(&models.Document{
		DocumentID: "DOC-9", ApplicationID: "APP-2",
		DocumentType: string(workflow.DocPassportCopy),
	}, nil)

	_, err := f.tracker.Review(context.Background(), "APP-1", "DOC-9",
		&models.DocumentReviewRequest{Decision: models.DocumentStatusApproved},
		"admin-1", workflow.RoleAdmin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	f.docs.AssertNotCalled(t, "UpdateStatusWithTx", mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStageChecklistTracksCompletion(t *testing.T) {
	f := newTrackerFixture()
	f.docs.On("GetRequirements", mock.Anything, "APP-1", 1).Return(stage1Requirements(), nil)
	f.docs.On("GetByApplicationID", mock.Anything, "APP-1").Return([]models.Document{
		{DocumentID: "DOC-1", DocumentType: string(workflow.DocPassportCopy),
			Status: models.DocumentStatusApproved, CreatedTime: 1000},
		{DocumentID: "DOC-2", DocumentType: string(workflow.DocAcademicTranscripts),
			Status: models.DocumentStatusUploaded, CreatedTime: 1000},
	}, nil)

	checklist, err := f.tracker.StageChecklist(context.Background(), "APP-1", 1)
	require.NoError(t, err)

	assert.False(t, checklist.Complete, "english certificate is still missing")
	require.Len(t, checklist.Items, 4)

	byType := map[string]models.StageChecklistItem{}
	for _, item := range checklist.Items {
		byType[item.DocumentType] = item
	}
	assert.True(t, byType[string(workflow.DocPassportCopy)].Satisfied)
	assert.True(t, byType[string(workflow.DocAcademicTranscripts)].Satisfied)
	assert.False(t, byType[string(workflow.DocEnglishCertificate)].Satisfied)
	assert.False(t, byType[string(workflow.DocRecommendationLetter)].Mandatory)
}

func TestOptionalRequirementDoesNotBlockCompletion(t *testing.T) {
	f := newTrackerFixture()
	f.docs.On("GetRequirements", mock.Anything, "APP-1", 1).Return(stage1Requirements(), nil)
	f.docs.On("GetByApplicationID", mock.Anything, "APP-1").Return([]models.Document{
		{DocumentID: "DOC-1", DocumentType: string(workflow.DocPassportCopy),
			Status: models.DocumentStatusUploaded, CreatedTime: 1000},
		{DocumentID: "DOC-2", DocumentType: string(workflow.DocAcademicTranscripts),
			Status: models.DocumentStatusUploaded, CreatedTime: 1000},
		{DocumentID: "DOC-3", DocumentType: string(workflow.DocEnglishCertificate),
			Status: models.DocumentStatusUploaded, CreatedTime: 1000},
	}, nil)

	complete, err := f.tracker.IsStageComplete(context.Background(), "APP-1", 1)
	require.NoError(t, err)
	assert.True(t, complete, "the recommendation letter is optional")
}

func TestReuploadSupersedesRejectedDocument(t *testing.T) {
	docs := []models.Document{
		{DocumentID: "DOC-1", DocumentType: string(workflow.DocPassportCopy),
			Status: models.DocumentStatusRejected, CreatedTime: 1000},
		{DocumentID: "DOC-2", DocumentType: string(workflow.DocPassportCopy),
			Status: models.DocumentStatusUploaded, CreatedTime: 2000},
	}

	best := latestSatisfying(docs, string(workflow.DocPassportCopy))
	require.NotNil(t, best)
	assert.Equal(t, "DOC-2", best.DocumentID)

	// A rejected document alone satisfies nothing.
	assert.Nil(t, latestSatisfying(docs[:1], string(workflow.DocPassportCopy)))
}

func TestCountDocumentsIgnoresOptionalRequirements(t *testing.T) {
	reqs := stage1Requirements()
	docs := []models.Document{
		{DocumentID: "DOC-1", DocumentType: string(workflow.DocPassportCopy),
			Status: models.DocumentStatusApproved, CreatedTime: 1000},
		{DocumentID: "DOC-2", DocumentType: string(workflow.DocRecommendationLetter),
			Status: models.DocumentStatusUploaded, CreatedTime: 1000},
	}

	required, uploaded, approved := countDocuments(reqs, docs)
	assert.Equal(t, 3, required)
	assert.Equal(t, 1, uploaded, "optional uploads do not count")
	assert.Equal(t, 1, approved)
}

func TestSeedChecklistCoversBothDocumentStages(t *testing.T) {
	f := newTrackerFixture()
	var seeded []models.DocumentRequirement
	f.docs.On("CreateRequirementWithTx", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			seeded = append(seeded, *args.Get(2).(*models.DocumentRequirement))
		}).Return(nil)

	err := f.tracker.SeedChecklistWithTx(context.Background(), nil, "APP-1")
	require.NoError(t, err)

	require.Len(t, seeded, 6)
	stages := map[int]int{}
	mandatory := 0
	for _, r := range seeded {
		stages[r.Stage]++
		if r.Mandatory {
			mandatory++
		}
	}
	assert.Equal(t, 4, stages[1])
	assert.Equal(t, 2, stages[3])
	assert.Equal(t, 5, mandatory)
	assert.Equal(t, 3, stage1MandatoryCount())
}

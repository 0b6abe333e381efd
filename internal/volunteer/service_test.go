package volunteer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tutorhub/internal/notification"
	"tutorhub/internal/queue"
)

type fakeStore struct {
	volunteers map[primitive.ObjectID]Volunteer
	lectures   []Lecture
	replaced   map[primitive.ObjectID][]Student
}

func newFakeStore(vols ...Volunteer) *fakeStore {
	f := &fakeStore{
		volunteers: map[primitive.ObjectID]Volunteer{},
		replaced:   map[primitive.ObjectID][]Student{},
	}
	for _, v := range vols {
		f.volunteers[v.ID] = v
	}
	return f
}

func (f *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (Volunteer, error) {
	v, ok := f.volunteers[id]
	if !ok {
		return Volunteer{}, ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) ReplaceStudents(_ context.Context, id primitive.ObjectID, students []Student) error {
	v := f.volunteers[id]
	v.Students = students
	f.volunteers[id] = v
	f.replaced[id] = students
	return nil
}

func (f *fakeStore) AppendLecture(_ context.Context, id primitive.ObjectID, lec Lecture) error {
	v, ok := f.volunteers[id]
	if !ok {
		return ErrNotFound
	}
	v.Lectures = append(v.Lectures, lec)
	v.LectureCount++
	f.volunteers[id] = v
	f.lectures = append(f.lectures, lec)
	return nil
}

type retractCall struct {
	userID       primitive.ObjectID
	typ, subject string
	studentEmail string
}

type fakeRetractor struct {
	calls   []retractCall
	deleted int64
}

func (f *fakeRetractor) DeleteForSubject(_ context.Context, userID primitive.ObjectID, typ, subject, studentEmail string) (int64, error) {
	f.calls = append(f.calls, retractCall{userID: userID, typ: typ, subject: subject, studentEmail: studentEmail})
	return f.deleted, nil
}

type captureQueue struct {
	published []queue.Message
}

func (q *captureQueue) Publish(_ context.Context, msg queue.Message) error {
	q.published = append(q.published, msg)
	return nil
}

func (q *captureQueue) Consume(context.Context) (<-chan queue.Message, error) {
	ch := make(chan queue.Message)
	close(ch)
	return ch, nil
}

func newTestService(store *fakeStore, notifs *fakeRetractor, q *captureQueue) *Service {
	return NewService(store, notifs, q, zap.NewNop())
}

func TestSubmitLecture_RetractsAlertAndPublishes(t *testing.T) {
	v := Volunteer{ID: primitive.NewObjectID()}
	store := newFakeStore(v)
	notifs := &fakeRetractor{deleted: 1}
	q := &captureQueue{}

	lec, err := newTestService(store, notifs, q).SubmitLecture(context.Background(),
		v.ID, "  Algebra basics ", "https://meet/x", "Math", "  Sam@X.com ")
	require.NoError(t, err)

	assert.Equal(t, "Algebra basics", lec.Name)
	assert.Equal(t, "sam@x.com", lec.StudentEmail, "student email is stored lowercase")
	require.Len(t, store.lectures, 1)

	require.Len(t, notifs.calls, 1)
	assert.Equal(t, notification.TypeLowLecturePerSubject, notifs.calls[0].typ)
	assert.Equal(t, "Math", notifs.calls[0].subject)
	assert.Equal(t, "sam@x.com", notifs.calls[0].studentEmail)

	require.Len(t, q.published, 1)
	assert.Equal(t, queue.TypeLectureSubmitted, q.published[0].Type)
	var payload LectureSubmitted
	require.NoError(t, json.Unmarshal(q.published[0].Body, &payload))
	assert.Equal(t, v.ID.Hex(), payload.VolunteerID)
	assert.Equal(t, "Math", payload.Subject)
}

func TestSubmitLecture_NoStudentSkipsRetraction(t *testing.T) {
	v := Volunteer{ID: primitive.NewObjectID()}
	store := newFakeStore(v)
	notifs := &fakeRetractor{}
	q := &captureQueue{}

	_, err := newTestService(store, notifs, q).SubmitLecture(context.Background(),
		v.ID, "open session", "", "Math", "")
	require.NoError(t, err)
	assert.Empty(t, notifs.calls)
	require.Len(t, q.published, 1)
}

func TestSubmitLecture_RequiresNameAndSubject(t *testing.T) {
	v := Volunteer{ID: primitive.NewObjectID()}
	svc := newTestService(newFakeStore(v), &fakeRetractor{}, &captureQueue{})

	_, err := svc.SubmitLecture(context.Background(), v.ID, " ", "", "Math", "")
	assert.ErrorIs(t, err, ErrInvalidLecture)
	_, err = svc.SubmitLecture(context.Background(), v.ID, "session", "", "  ", "")
	assert.ErrorIs(t, err, ErrInvalidLecture)
}

func TestAddStudent_RejectsCaseInsensitiveDuplicate(t *testing.T) {
	v := Volunteer{
		ID:       primitive.NewObjectID(),
		Students: []Student{{Name: "Sam", Email: "sam@x.com"}},
	}
	svc := newTestService(newFakeStore(v), &fakeRetractor{}, &captureQueue{})

	_, err := svc.AddStudent(context.Background(), v.ID, Student{Name: "Sam 2", Email: "SAM@x.com"})
	assert.ErrorIs(t, err, ErrStudentExists)
}

func TestAddStudent_NormalizesAndAppends(t *testing.T) {
	v := Volunteer{ID: primitive.NewObjectID(), Students: []Student{}}
	store := newFakeStore(v)
	svc := newTestService(store, &fakeRetractor{}, &captureQueue{})

	got, err := svc.AddStudent(context.Background(), v.ID, Student{Name: "Sam", Email: "Sam@X.com"})
	require.NoError(t, err)
	require.Len(t, got.Students, 1)
	assert.Equal(t, "Sam@X.com", got.Students[0].Email)
	assert.Equal(t, "sam@x.com", got.Students[0].EmailCI)
	assert.NotNil(t, got.Students[0].Subjects)
	assert.Len(t, store.replaced[v.ID], 1)
}

func TestAddStudent_RejectsNegativeMinimum(t *testing.T) {
	v := Volunteer{ID: primitive.NewObjectID()}
	svc := newTestService(newFakeStore(v), &fakeRetractor{}, &captureQueue{})

	_, err := svc.AddStudent(context.Background(), v.ID, Student{
		Name:     "Sam",
		Email:    "sam@x.com",
		Subjects: []SubjectAssignment{{Name: "Math", MinLectures: -1}},
	})
	assert.ErrorIs(t, err, ErrInvalidMinimum)
}

func TestRemoveStudent(t *testing.T) {
	v := Volunteer{
		ID: primitive.NewObjectID(),
		Students: []Student{
			{Name: "Sam", Email: "sam@x.com"},
			{Name: "Ana", Email: "ana@x.com"},
		},
	}
	store := newFakeStore(v)
	svc := newTestService(store, &fakeRetractor{}, &captureQueue{})

	require.NoError(t, svc.RemoveStudent(context.Background(), v.ID, "SAM@x.com"))
	kept := store.replaced[v.ID]
	require.Len(t, kept, 1)
	assert.Equal(t, "ana@x.com", kept[0].Email)

	assert.ErrorIs(t, svc.RemoveStudent(context.Background(), v.ID, "nobody@x.com"), ErrStudentMissing)
}

func TestSetStudentSubjects(t *testing.T) {
	v := Volunteer{
		ID:       primitive.NewObjectID(),
		Students: []Student{{Name: "Sam", Email: "sam@x.com"}},
	}
	store := newFakeStore(v)
	svc := newTestService(store, &fakeRetractor{}, &captureQueue{})

	subjects := []SubjectAssignment{{Name: "Math", MinLectures: 2}, {Name: "Physics", MinLectures: 1}}
	require.NoError(t, svc.SetStudentSubjects(context.Background(), v.ID, "Sam@X.com", subjects))
	require.Len(t, store.replaced[v.ID], 1)
	assert.Equal(t, subjects, store.replaced[v.ID][0].Subjects)

	err := svc.SetStudentSubjects(context.Background(), v.ID, "nobody@x.com", subjects)
	assert.ErrorIs(t, err, ErrStudentMissing)
}

func TestSetStudentSubjects_NilBecomesEmpty(t *testing.T) {
	v := Volunteer{
		ID:       primitive.NewObjectID(),
		Students: []Student{{Name: "Sam", Email: "sam@x.com", Subjects: []SubjectAssignment{{Name: "Math", MinLectures: 2}}}},
	}
	store := newFakeStore(v)
	svc := newTestService(store, &fakeRetractor{}, &captureQueue{})

	require.NoError(t, svc.SetStudentSubjects(context.Background(), v.ID, "sam@x.com", nil))
	require.Len(t, store.replaced[v.ID], 1)
	assert.NotNil(t, store.replaced[v.ID][0].Subjects)
	assert.Empty(t, store.replaced[v.ID][0].Subjects)
}

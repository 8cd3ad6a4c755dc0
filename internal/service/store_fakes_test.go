package service

import (
	"context"
	"errors"
	"lingo_backend/internal/model"
	"lingo_backend/internal/util"
	"sort"
	"sync"
	"time"
)

type learnerKey struct {
	learner uint
	id      uint
}

// memStore 实现全部存储接口，供服务层测试使用
type memStore struct {
	mu        sync.Mutex
	courses   map[uint]model.Course
	lessons   map[uint]model.Lesson
	questions map[uint][]model.Question
	attempts  []model.QuestionAttempt
	progress  map[learnerKey]*model.LessonProgress
	certs     map[learnerKey]model.Certificate

	listErr    error
	insertErr  error
	lessonsErr error
	certErr    error
	inserts    int
	nextID     uint
}

var errStoreDown = errors.New("connection refused")

func newMemStore() *memStore {
	return &memStore{
		courses:   make(map[uint]model.Course),
		lessons:   make(map[uint]model.Lesson),
		questions: make(map[uint][]model.Question),
		progress:  make(map[learnerKey]*model.LessonProgress),
		certs:     make(map[learnerKey]model.Certificate),
	}
}

// addLesson 建课时并按答案依次生成题目，题目 ID 为 lessonID*100+序号
func (m *memStore) addLesson(courseID, lessonID uint, answers ...string) []model.Question {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.courses[courseID]; !ok {
		c := model.Course{Title: "course"}
		c.ID = courseID
		m.courses[courseID] = c
	}

	l := model.Lesson{CourseID: courseID, Title: "lesson"}
	l.ID = lessonID
	m.lessons[lessonID] = l

	qs := make([]model.Question, 0, len(answers))
	for i, a := range answers {
		q := model.Question{LessonID: lessonID, Prompt: "q", CorrectAnswer: a, Order: i + 1}
		q.ID = lessonID*100 + uint(i) + 1
		qs = append(qs, q)
	}
	m.questions[lessonID] = qs
	return qs
}

func (m *memStore) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

func (m *memStore) ListAttempts(ctx context.Context, learnerID, lessonID uint) ([]model.QuestionAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	var out []model.QuestionAttempt
	for _, a := range m.attempts {
		if a.LearnerID == learnerID && a.LessonID == lessonID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) InsertAttempts(ctx context.Context, attempts []model.QuestionAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}

	for _, a := range attempts {
		m.nextID++
		a.ID = m.nextID
		m.attempts = append(m.attempts, a)
	}
	m.inserts++
	return nil
}

func (m *memStore) FindCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[courseID]
	if !ok {
		return nil, util.ErrCourseNotFound
	}
	return &c, nil
}

func (m *memStore) GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[lessonID]
	if !ok {
		return nil, util.ErrLessonNotFound
	}
	return &l, nil
}

func (m *memStore) GetLessonQuestions(ctx context.Context, lessonID uint) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Question(nil), m.questions[lessonID]...), nil
}

func (m *memStore) GetCourseLessons(ctx context.Context, courseID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lessonsErr != nil {
		return nil, m.lessonsErr
	}

	var ids []uint
	for id, l := range m.lessons {
		if l.CourseID == courseID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) GetLessonProgress(ctx context.Context, learnerID, lessonID uint) (*model.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progress[learnerKey{learnerID, lessonID}]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ensure(learnerID, lessonID uint, at time.Time) *model.LessonProgress {
	key := learnerKey{learnerID, lessonID}
	p, ok := m.progress[key]
	if !ok {
		p = &model.LessonProgress{LearnerID: learnerID, LessonID: lessonID, StartedAt: at}
		m.progress[key] = p
	}
	return p
}

func (m *memStore) EnsureLessonProgress(ctx context.Context, learnerID, lessonID uint, at time.Time) (*model.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.ensure(learnerID, lessonID, at)
	return &cp, nil
}

func (m *memStore) MarkLessonCompleted(ctx context.Context, learnerID, lessonID uint, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.ensure(learnerID, lessonID, at)
	if p.Completed {
		return false, nil
	}
	p.Completed = true
	p.CompletedAt = &at
	return true, nil
}

func (m *memStore) AddTimeSpent(ctx context.Context, learnerID, lessonID uint, seconds int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(learnerID, lessonID, at).TimeSpent += seconds
	return nil
}

func (m *memStore) ListLessonProgress(ctx context.Context, learnerID uint, lessonIDs []uint) (map[uint]model.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint]model.LessonProgress)
	for _, id := range lessonIDs {
		if p, ok := m.progress[learnerKey{learnerID, id}]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (m *memStore) CertificateExists(ctx context.Context, learnerID, courseID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.certs[learnerKey{learnerID, courseID}]
	return ok, nil
}

func (m *memStore) CreateCertificate(ctx context.Context, cert *model.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.certErr != nil {
		return m.certErr
	}
	key := learnerKey{cert.LearnerID, cert.CourseID}
	if _, ok := m.certs[key]; ok {
		return util.ErrCertificateExists
	}
	m.nextID++
	cert.ID = m.nextID
	m.certs[key] = *cert
	return nil
}

func (m *memStore) FindCertificate(ctx context.Context, learnerID, courseID uint) (*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.certs[learnerKey{learnerID, courseID}]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memStore) ListCertificates(ctx context.Context, learnerID uint) ([]model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Certificate
	for key, c := range m.certs {
		if key.learner == learnerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// memCache 记录调用次数的 StatusCache
type memCache struct {
	mu          sync.Mutex
	entries     map[learnerKey]model.MasteryStatus
	sets        int
	invalidates int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[learnerKey]model.MasteryStatus)}
}

func (c *memCache) Get(ctx context.Context, learnerID, lessonID uint) (*model.MasteryStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[learnerKey{learnerID, lessonID}]
	if !ok {
		return nil, false
	}
	return &s, true
}

func (c *memCache) Set(ctx context.Context, learnerID, lessonID uint, status *model.MasteryStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[learnerKey{learnerID, lessonID}] = *status
	c.sets++
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, learnerID, lessonID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, learnerKey{learnerID, lessonID})
	c.invalidates++
	return nil
}

// stepClock 每次调用前进 step
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

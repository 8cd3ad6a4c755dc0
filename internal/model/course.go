package model

// swagger:model Course
type Course struct {
	BaseModel
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Language    string   `gorm:"size:10;default:'en'" json:"language"`
	Lessons     []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID  uint       `gorm:"index;not null" json:"courseId"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Content   string     `gorm:"type:text" json:"content"`
	Order     int        `gorm:"column:sort_order;default:0" json:"order"`
	Questions []Question `gorm:"foreignKey:LessonID" json:"questions,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// Question 属于某一课的测验题，CorrectAnswer 不对学习者输出
type Question struct {
	BaseModel
	LessonID      uint   `gorm:"index;not null" json:"lessonId"`
	Prompt        string `gorm:"type:text;not null" json:"prompt"`
	CorrectAnswer string `gorm:"size:255;not null" json:"-"`
	Order         int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

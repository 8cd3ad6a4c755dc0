package repository

import (
	"context"
	"errors"
	"lingo_backend/internal/model"
	"lingo_backend/internal/util"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) CertificateExists(ctx context.Context, learnerID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Certificate{}).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		Count(&count).Error
	return count > 0, err
}

// CreateCertificate 唯一索引冲突统一返回 util.ErrCertificateExists
func (r *CertificateRepository) CreateCertificate(ctx context.Context, cert *model.Certificate) error {
	err := r.DB.WithContext(ctx).Create(cert).Error
	if isDuplicateKey(err) {
		return util.ErrCertificateExists
	}
	return err
}

func (r *CertificateRepository) FindCertificate(ctx context.Context, learnerID, courseID uint) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) ListCertificates(ctx context.Context, learnerID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("issued_at desc").
		Find(&certs).Error
	return certs, err
}

// isDuplicateKey 依赖 gorm.Config.TranslateError 把各驱动的唯一键冲突统一成 ErrDuplicatedKey
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

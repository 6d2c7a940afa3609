package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"hr_training_backend/internal/model"
	"hr_training_backend/internal/repository"
	"hr_training_backend/internal/util"
	"hr_training_backend/pkg/logger"

	"go.uber.org/zap"
)

type MaterialService struct {
	materials *repository.MaterialRepository
	modules   *repository.ModuleRepository
	storage   *StorageService
}

func NewMaterialService(materialRepo *repository.MaterialRepository, moduleRepo *repository.ModuleRepository, storage *StorageService) *MaterialService {
	return &MaterialService{
		materials: materialRepo,
		modules:   moduleRepo,
		storage:   storage,
	}
}

// Upload 上传培训资料。视频文件先落临时盘探测元信息并抓缩略图，再推送到存储后端。
func (s *MaterialService) Upload(ctx context.Context, moduleID, uploaderID uint, header *multipart.FileHeader) (*model.Material, error) {
	if _, err := s.modules.FindByID(moduleID); err != nil {
		return nil, util.ErrModuleNotFound
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	objectName := fmt.Sprintf("materials/%d/%s_%s", moduleID, model.GenerateUUID()[:8], filepath.Base(header.Filename))

	m := &model.Material{
		ModuleID:    moduleID,
		UploaderID:  uploaderID,
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	}

	if strings.HasPrefix(contentType, "video/") {
		url, err := s.uploadVideo(ctx, objectName, file, m)
		if err != nil {
			return nil, err
		}
		m.URL = url
	} else {
		url, err := s.storage.Upload(ctx, objectName, file, header.Size, contentType)
		if err != nil {
			return nil, err
		}
		m.URL = url
	}

	if err := s.materials.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MaterialService) uploadVideo(ctx context.Context, objectName string, file multipart.File, m *model.Material) (string, error) {
	tmp, err := os.CreateTemp("", "material_*"+filepath.Ext(objectName))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return "", err
	}
	tmp.Close()

	// 探测失败不阻断上传，只丢掉元信息
	if info, err := util.ProbeVideo(tmp.Name()); err == nil {
		m.VideoDuration = info.Duration
	} else {
		logger.Log.Warn("video probe failed", zap.String("file", m.Name), zap.Error(err))
	}

	thumbPath := tmp.Name() + ".jpg"
	if err := util.GenerateThumbnail(tmp.Name(), thumbPath, "00:00:01"); err == nil {
		defer os.Remove(thumbPath)
		thumbObject := objectName + ".thumb.jpg"
		if url, err := s.storage.UploadFile(ctx, thumbObject, thumbPath, "image/jpeg"); err == nil {
			m.ThumbnailURL = url
		}
	}

	return s.storage.UploadFile(ctx, objectName, tmp.Name(), m.ContentType)
}

func (s *MaterialService) ListByModule(moduleID uint) ([]model.Material, error) {
	return s.materials.ListByModule(moduleID)
}

func (s *MaterialService) Delete(ctx context.Context, id uint) error {
	m, err := s.materials.FindByID(id)
	if err != nil {
		return err
	}

	// 存储侧清理失败不影响记录删除
	if err := s.storage.Delete(ctx, strings.TrimPrefix(m.URL, "/uploads/")); err != nil {
		logger.Log.Warn("failed to delete stored material", zap.String("url", m.URL), zap.Error(err))
	}

	return s.materials.Delete(id)
}

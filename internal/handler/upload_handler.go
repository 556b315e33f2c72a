package handler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const maxUploadBytes = 5 << 20

var uploadExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// UploadCoverImage 处理封面图上传，返回可直接填入 coverImage 的绝对地址。
func (a *API) UploadCoverImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No image uploaded.")
		return
	}
	if file.Size > maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "Image must be 5MB or smaller.")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read the uploaded image.")
		return
	}
	defer src.Close()

	// 以实际解码结果判断格式，不信任 Content-Type
	config, format, err := image.DecodeConfig(src)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Only JPEG, PNG, GIF and WebP images are allowed.")
		return
	}
	ext, ok := uploadExtensions[format]
	if !ok {
		respondError(c, http.StatusBadRequest, "Only JPEG, PNG, GIF and WebP images are allowed.")
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not read the uploaded image.")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to prepare upload directory.")
		return
	}

	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), ext)
	if err := saveUpload(filepath.Join(a.uploadDir, name), src); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to save image.")
		return
	}

	path := a.uploadURL + "/" + name
	c.JSON(http.StatusCreated, gin.H{
		"url":    a.absoluteURL(path),
		"path":   path,
		"width":  config.Width,
		"height": config.Height,
		"format": format,
	})
}

// saveUpload 写入文件，失败时删除写了一半的文件。
func saveUpload(path string, src io.Reader) (err error) {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close upload: %w", closeErr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}
	return nil
}

package storage

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	_ "image/jpeg"
	_ "image/png"

	"quill/domain"
	"quill/errs"
)

// MaxUploadSize caps post image uploads at 5 Megabyte.
const MaxUploadSize int64 = 5 << 20

var _ domain.ImageService = &ImageService{}

// NewImageService returns an ImageService storing files on disk below dir.
func NewImageService(dir string) *ImageService {
	return &ImageService{
		imageValidator{
			imageDisk{
				dir: dir,
			},
		},
	}
}

// ImageService validates and stores post images on disk. The rest of
// the system only ever sees the opaque reference string it hands out.
type ImageService struct {
	imageValidator
}

type imageValidator struct {
	imageDisk
}

type imageDisk struct {
	dir string
}

// Create runs the upload validations, then writes the file to disk and
// sets the image's Ref.
func (iv *imageValidator) Create(img *domain.Image) error {
	err := runImageValFns(img,
		iv.extensionValid,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
		iv.belowMaxSize,
		iv.refAssign,
	)
	if err != nil {
		return err
	}
	return iv.imageDisk.create(img)
}

// Delete removes the referenced file from disk. A reference that no
// longer resolves is a silent no-op.
func (iv *imageValidator) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	if strings.Contains(ref, "..") {
		return errs.Errorf(errs.EINVALID, "Invalid image reference.")
	}
	return iv.imageDisk.delete(ref)
}

type imageValFn func(img *domain.Image) error

func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetReaderPosition(img); err != nil {
		return err
	}
	if size > MaxUploadSize {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" exceeds upload size limit of "+strconv.FormatInt(MaxUploadSize/1000000, 10)+"MB.",
		)
	}
	return nil
}

func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	_, err := img.File.Read(buffer)
	if err != nil {
		return err
	}
	if err = resetReaderPosition(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" invalid content-type, must be image/jpeg or image/png.",
		)
	}
	img.ContentType = contentType
	return nil
}

func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	contentType := strings.TrimPrefix(img.ContentType, "image/")
	ext := strings.TrimPrefix(img.Extension, ".")
	if contentType != ext {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" content-type "+img.ContentType+" does not match extension "+img.Extension+".",
		)
	}
	return nil
}

func (iv *imageValidator) extensionValid(img *domain.Image) error {
	ext := filepath.Ext(img.Filename)
	ext = strings.ToLower(ext)
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return errs.Errorf(
			errs.EINVALID,
			"Image "+img.Filename+" invalid extension, must be .jpeg or .png",
		)
	}
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	img.Extension = ext
	return nil
}

// refAssign gives the file its reference: a uuid filename below the
// posts directory, so uploads can never collide or clobber each other.
func (iv *imageValidator) refAssign(img *domain.Image) error {
	img.Ref = filepath.Join("posts", uuid.NewString()+img.Extension)
	return nil
}

// resetReaderPosition seeks back to the beginning of the file, so that
// subsequent reads will work.
func resetReaderPosition(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}

func (id imageDisk) create(img *domain.Image) error {
	path := filepath.Join(id.dir, img.Ref)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, img.File)
	return err
}

func (id imageDisk) delete(ref string) error {
	err := os.Remove(filepath.Join(id.dir, ref))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

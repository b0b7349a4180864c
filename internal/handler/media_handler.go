package handler

import (
	"net/http"
	"strings"

	"terravest/internal/models"
	"terravest/internal/repository"
	"terravest/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MediaHandler covers the asset-backed CMS collections: gallery photos,
// downloadable resources and partner logos.
type MediaHandler struct {
	gallery   *repository.GalleryRepository
	resources *repository.ResourceRepository
	partners  *repository.PartnerRepository
	uploads   cloudinary.Client
}

func NewMediaHandler(
	gallery *repository.GalleryRepository,
	resources *repository.ResourceRepository,
	partners *repository.PartnerRepository,
	uploads cloudinary.Client,
) *MediaHandler {
	return &MediaHandler{gallery: gallery, resources: resources, partners: partners, uploads: uploads}
}

func (h *MediaHandler) ListGallery(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.gallery.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gallery": list, "total": total})
}

func (h *MediaHandler) CreateGalleryItem(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
		return
	}
	defer f.Close()
	url, err := h.uploads.UploadImage(c.Request.Context(), f, "gallery", uuid.New().String())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}
	item := &models.GalleryItem{
		Title:    c.PostForm("title"),
		Caption:  c.PostForm("caption"),
		ImageURL: url,
	}
	if err := h.gallery.Create(item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save gallery item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *MediaHandler) DeleteGalleryItem(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.gallery.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete gallery item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "gallery item deleted"})
}

func (h *MediaHandler) ListResources(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.resources.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": list, "total": total})
}

func (h *MediaHandler) CreateResource(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer f.Close()
	url, err := h.uploads.UploadFile(c.Request.Context(), f, "resources", uuid.New().String())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "file upload failed"})
		return
	}
	res := &models.ResourceFile{
		Title:       title,
		Description: c.PostForm("description"),
		FileURL:     url,
	}
	if err := h.resources.Create(res); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save resource"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"resource": res})
}

func (h *MediaHandler) DeleteResource(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.resources.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete resource"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "resource deleted"})
}

func (h *MediaHandler) ListPartners(c *gin.Context) {
	limit, offset := paginate(c)
	list, total, err := h.partners.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": list, "total": total})
}

func (h *MediaHandler) CreatePartner(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	p := &models.Partner{
		Name:    name,
		Website: c.PostForm("website"),
	}
	if file, err := c.FormFile("logo"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable logo"})
			return
		}
		defer f.Close()
		url, err := h.uploads.UploadImage(c.Request.Context(), f, "partners", uuid.New().String())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "logo upload failed"})
			return
		}
		p.LogoURL = url
	}
	if err := h.partners.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save partner"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"partner": p})
}

func (h *MediaHandler) UpdatePartner(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.partners.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
		return
	}
	if name := strings.TrimSpace(c.PostForm("name")); name != "" {
		p.Name = name
	}
	if v, ok := c.GetPostForm("website"); ok {
		p.Website = v
	}
	if file, err := c.FormFile("logo"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable logo"})
			return
		}
		defer f.Close()
		url, err := h.uploads.UploadImage(c.Request.Context(), f, "partners", uuid.New().String())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "logo upload failed"})
			return
		}
		p.LogoURL = url
	}
	if err := h.partners.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update partner"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner": p})
}

func (h *MediaHandler) DeletePartner(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.partners.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete partner"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "partner deleted"})
}

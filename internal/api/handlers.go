package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dicomstatic/internal/wado"
	"dicomstatic/pkg/dicomweb"
)

func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case wado.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case wado.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}

func (s *Server) storeInstance(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": `multipart field "file" required`})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable upload"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable upload"})
		return
	}
	obj, err := s.parse(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	id, err := s.archive.Ingest(c.Request.Context(), obj)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

// listStudies joins the study directory listing with each study's index.
// Studies whose index cannot be read still appear, UID only.
func (s *Server) listStudies(c *gin.Context) {
	ctx := c.Request.Context()
	uids, err := s.retriever.ListStudies(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}
	summaries := make([]dicomweb.StudySummary, 0, len(uids))
	for _, uid := range uids {
		summary := dicomweb.StudySummary{UID: uid}
		if index, err := s.retriever.GetStudyIndex(ctx, uid); err == nil {
			summary.Date = index.StringValue(dicomweb.TagStudyDate)
			summary.Description = index.StringValue(dicomweb.TagStudyDescription)
		} else {
			s.logger.Warn("study index unreadable", zap.String("study", uid), zap.Error(err))
		}
		summaries = append(summaries, summary)
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) listSeries(c *gin.Context) {
	ctx := c.Request.Context()
	study := c.Param("study")
	uids, err := s.retriever.ListSeries(ctx, study)
	if err != nil {
		s.renderError(c, err)
		return
	}
	summaries := make([]dicomweb.SeriesSummary, 0, len(uids))
	for _, uid := range uids {
		summary := dicomweb.SeriesSummary{UID: uid}
		if index, err := s.retriever.GetSeriesIndex(ctx, study, uid); err == nil {
			summary.Number = index.StringValue(dicomweb.TagSeriesNumber)
			summary.Description = index.StringValue(dicomweb.TagSeriesDescription)
		} else {
			s.logger.Warn("series index unreadable", zap.String("series", uid), zap.Error(err))
		}
		summaries = append(summaries, summary)
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) listInstances(c *gin.Context) {
	ctx := c.Request.Context()
	study := c.Param("study")
	series := c.Param("series")
	uids, err := s.retriever.ListInstances(ctx, study, series)
	if err != nil {
		s.renderError(c, err)
		return
	}
	summaries := make([]dicomweb.InstanceSummary, 0, len(uids))
	for _, uid := range uids {
		summary := dicomweb.InstanceSummary{UID: uid}
		if meta, err := s.retriever.GetMetadata(ctx, study, series, uid); err == nil {
			summary.Number = meta.IntValue(dicomweb.TagInstanceNumber)
		} else {
			s.logger.Warn("instance metadata unreadable", zap.String("instance", uid), zap.Error(err))
		}
		summaries = append(summaries, summary)
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) studyMetadata(c *gin.Context) {
	meta, err := s.retriever.GetStudyMetadata(c.Request.Context(), c.Param("study"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) seriesMetadata(c *gin.Context) {
	meta, err := s.retriever.GetSeriesMetadata(c.Request.Context(), c.Param("study"), c.Param("series"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) instanceMetadata(c *gin.Context) {
	meta, err := s.retriever.GetMetadata(c.Request.Context(), c.Param("study"), c.Param("series"), c.Param("instance"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) instanceFrame(c *gin.Context) {
	frame, err := strconv.Atoi(c.Param("frame"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "frame must be a positive integer"})
		return
	}
	data, err := s.retriever.GetFrame(c.Request.Context(), c.Param("study"), c.Param("series"), c.Param("instance"), frame)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (s *Server) instancePixelData(c *gin.Context) {
	data, err := s.retriever.GetPixelData(c.Request.Context(), c.Param("study"), c.Param("series"), c.Param("instance"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (s *Server) instanceRendered(c *gin.Context) {
	data, err := s.retriever.GetRendered(c.Request.Context(), c.Param("study"), c.Param("series"), c.Param("instance"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) studyThumbnail(c *gin.Context) {
	s.thumbnail(c, c.Param("study"), "", "")
}

func (s *Server) seriesThumbnail(c *gin.Context) {
	s.thumbnail(c, c.Param("study"), c.Param("series"), "")
}

func (s *Server) instanceThumbnail(c *gin.Context) {
	s.thumbnail(c, c.Param("study"), c.Param("series"), c.Param("instance"))
}

func (s *Server) thumbnail(c *gin.Context, study, series, instance string) {
	data, err := s.retriever.Thumbnail(c.Request.Context(), study, series, instance)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

// admin.go - inbox, page views and section views for the site owner.
// Visitors are only ever stored as salted hashes.
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/contact"
)

const (
	adminCookie    = "admin_token"
	retentionLimit = "-12 months"
)

var (
	adminToken  string
	hashingSalt string
)

type SectionStat struct {
	Section  string `json:"section"`
	Views    int64  `json:"views"`
	Sessions int64  `json:"sessions"`
}

type AdminStats struct {
	PageViews      int64            `json:"page_views"`
	UniqueVisitors int64            `json:"unique_visitors"`
	ViewsToday     int64            `json:"views_today"`
	ViewsThisWeek  int64            `json:"views_this_week"`
	Messages       int64            `json:"messages"`
	Sections       []SectionStat    `json:"sections"`
	RecentMessages []ContactMessage `json:"recent_messages"`
	RecentViews    []PageView       `json:"recent_views"`
}

// initAdmin creates the per-process admin token and hashing salt, and
// prunes records past the retention limit.
func initAdmin() {
	adminToken = randomToken()
	hashingSalt = randomToken()

	log.Printf("Admin access available at: /admin/login")
	if gin.Mode() == gin.DebugMode {
		log.Printf("Admin token (dev only): %s", adminToken)
	}

	go pruneOldRecords()
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal("Failed to generate token: ", err)
	}
	return hex.EncodeToString(b)
}

// anonymize maps an IP or session id to a short salted hash. The salt
// changes with every restart.
func anonymize(id string) string {
	sum := sha256.Sum256([]byte(id + hashingSalt))
	return hex.EncodeToString(sum[:])[:16]
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// untrackedPrefixes are paths that are not page loads.
var untrackedPrefixes = []string{"/static/", "/images/", "/admin/", "/hero/", "/favicon", "/privacy"}

// pageViewMiddleware records GET page loads, unless the browser sends DNT.
func pageViewMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		track := c.Request.Method == http.MethodGet && c.GetHeader("DNT") != "1"
		for _, p := range untrackedPrefixes {
			if strings.HasPrefix(path, p) {
				track = false
				break
			}
		}
		if track {
			go recordPageView(anonymize(c.ClientIP()), c.GetHeader("User-Agent"), path)
		}
		c.Next()
	}
}

func pruneOldRecords() {
	for _, table := range []string{"page_views", "section_views"} {
		n, err := deleteOlderThan(table, retentionLimit)
		if err != nil {
			log.Printf("Error pruning %s: %v", table, err)
			continue
		}
		if n > 0 {
			log.Printf("Privacy cleanup: removed %d %s records older than 12 months", n, table)
		}
	}
}

func loadAdminStats() (*AdminStats, error) {
	stats := &AdminStats{}

	counters := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM page_views", &stats.PageViews},
		{"SELECT COUNT(DISTINCT visitor) FROM page_views", &stats.UniqueVisitors},
		{"SELECT COUNT(*) FROM page_views WHERE DATE(timestamp) = DATE('now')", &stats.ViewsToday},
		{"SELECT COUNT(*) FROM page_views WHERE timestamp >= datetime('now', '-7 days')", &stats.ViewsThisWeek},
		{"SELECT COUNT(*) FROM messages", &stats.Messages},
	}
	for _, counter := range counters {
		if err := db.QueryRow(counter.query).Scan(counter.dest); err != nil {
			return nil, err
		}
	}

	var err error
	if stats.Sections, err = sectionStats(); err != nil {
		return nil, err
	}
	if stats.RecentMessages, err = recentMessages(10); err != nil {
		return nil, err
	}
	if stats.RecentViews, err = recentPageViews(50); err != nil {
		return nil, err
	}
	return stats, nil
}

type adminHandlers struct {
	cfg Config
}

func setupAdminRoutes(r *gin.Engine, cfg Config) {
	h := adminHandlers{cfg: cfg}

	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{"title": "Privacy Policy"})
	})
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})
	r.POST("/admin/login", h.login)
	r.GET("/admin/logout", h.logout)

	admin := r.Group("/admin", requireAdmin())
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/api/stats", h.statsJSON)
	admin.GET("/export/stats", h.exportStats)
	admin.GET("/messages", h.messages)
	admin.DELETE("/messages/:id", h.deleteMessage)
	admin.GET("/visitors", h.pageViews)
	admin.POST("/privacy/delete-visitor-data", func(c *gin.Context) {
		go pruneOldRecords()
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup initiated"})
	})
}

func (h adminHandlers) login(c *gin.Context) {
	userOK := subtle.ConstantTimeCompare([]byte(c.PostForm("username")), []byte(h.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.PostForm("password")), []byte(h.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		log.Printf("Failed admin login attempt from %s", anonymize(c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
		return
	}

	c.SetCookie(adminCookie, adminToken, 3600*24, "/admin", "", false, true)
	log.Printf("Admin login from %s", anonymize(c.ClientIP()))
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (h adminHandlers) logout(c *gin.Context) {
	c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
	c.Redirect(http.StatusFound, "/admin/login")
}

func (h adminHandlers) dashboard(c *gin.Context) {
	stats, err := loadAdminStats()
	if err != nil {
		log.Printf("Error loading admin stats: %v", err)
		c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
		return
	}
	c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats})
}

func (h adminHandlers) statsJSON(c *gin.Context) {
	stats, err := loadAdminStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h adminHandlers) exportStats(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
	h.statsJSON(c)
}

func (h adminHandlers) messages(c *gin.Context) {
	messages, err := recentMessages(200)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load messages"})
		return
	}
	c.HTML(http.StatusOK, "admin-messages.html", gin.H{"messages": messages})
}

func (h adminHandlers) deleteMessage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message id"})
		return
	}

	found, err := deleteMessage(id)
	switch {
	case err != nil:
		log.Printf("Error deleting message %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
	case !found:
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
	}
}

func (h adminHandlers) pageViews(c *gin.Context) {
	views, err := recentPageViews(200)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load page views"})
		return
	}
	c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"views": views})
}

// messagePreview shortens a stored message for dashboard tables.
func messagePreview(msg string) string {
	msg = contact.StripMarkup(msg)
	if r := []rune(msg); len(r) > 80 {
		return string(r[:80]) + "…"
	}
	return msg
}

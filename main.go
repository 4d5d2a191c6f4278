package main

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/typing"
	"github.com/Zachkp/folio/internal/visibility"
)

type site struct {
	cfg      Config
	projects []portfolio.Project
	sessions *sessionStore
	clock    typing.Clock
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	if err := openDB(cfg.DBPath); err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	initAdmin()

	projects, err := portfolio.LoadProjects(cfg.ProjectsFile)
	if err != nil {
		log.Fatal("Failed to load projects: ", err)
	}

	var mailer contact.Submitter = newMailer(cfg)
	if cfg.SimulateContact {
		log.Printf("Contact form is simulated (%s delay), no email will be sent", cfg.SimulateDelay)
		mailer = contact.Simulated{Delay: cfg.SimulateDelay}
	}
	// Mail first: a failed send lets the visitor retry without leaving a
	// duplicate in the inbox.
	submitter := contact.Chain(mailer, contact.SubmitterFunc(storeMessage))

	s := &site{
		cfg:      cfg,
		projects: projects,
		sessions: newSessionStore(submitter, cfg.SessionTTL, cfg.MaxSessions),
		clock:    typing.RealClock,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go s.sessions.runJanitor(ctx, time.Minute)

	r := gin.Default()
	setupRoutes(r, s)
	setupAdminRoutes(r, cfg)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()
	log.Printf("Listening on :%s", cfg.Port)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down: %v", err)
	}
	s.sessions.closeAll()
}

func setupRoutes(r *gin.Engine, s *site) {
	r.SetFuncMap(template.FuncMap{
		"preview": messagePreview,
	})
	r.LoadHTMLGlob(s.cfg.Templates)

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	r.Use(pageViewMiddleware())

	r.GET("/", func(c *gin.Context) {
		data := gin.H{
			"heroTitle":    portfolio.HeroTitle,
			"heroSubtitle": portfolio.HeroSubtitle,
			"aboutMe":      portfolio.AboutMe,
			"contactIntro": portfolio.ContactIntro,
			"projects":     portfolio.Showcase(s.projects),
			"visible":      map[string]bool{},
		}
		form := contact.FormState{}
		if sess := s.sessions.peek(c); sess != nil {
			data["visible"] = sess.visible()
			form = sess.form.State()
		}
		for k, v := range contactView(form) {
			data[k] = v
		}
		c.HTML(http.StatusOK, "index.html", data)
	})

	r.GET("/hero/stream", heroStream(s.cfg.Hero, s.clock))

	r.GET("/contact-form", func(c *gin.Context) {
		form := contact.FormState{}
		if sess := s.sessions.peek(c); sess != nil {
			form = sess.form.State()
		}
		c.HTML(http.StatusOK, "contact.html", contactView(form))
	})

	// HTMX posts the first edit of a field that has an error here, so the
	// error is dropped server-side too.
	r.POST("/contact/field", func(c *gin.Context) {
		sess := s.sessions.get(c)
		if applyFormFields(c, sess.form) == 0 {
			c.String(http.StatusBadRequest, "no contact field in request")
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.POST("/contact", func(c *gin.Context) {
		sess := s.sessions.get(c)
		applyFormFields(c, sess.form)

		outcome, err := sess.form.Submit(c.Request.Context())
		view := contactView(sess.form.State())
		switch outcome {
		case contact.OutcomeSent:
			c.HTML(http.StatusOK, "contact-success.html", view)
		case contact.OutcomeFailed:
			log.Printf("Contact submission failed: %v", err)
			view["error"] = portfolio.ContactFailure
			c.HTML(http.StatusOK, "contact.html", view)
		default:
			c.HTML(http.StatusOK, "contact.html", view)
		}
	})

	r.POST("/contact/reset", func(c *gin.Context) {
		sess := s.sessions.get(c)
		if err := sess.form.Reset(); err != nil && !errors.Is(err, contact.ErrNotSubmitted) {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.HTML(http.StatusOK, "contact.html", contactView(sess.form.State()))
	})

	r.POST("/beacon/visibility", func(c *gin.Context) {
		var beacon struct {
			Section string   `json:"section" binding:"required"`
			Ratio   *float64 `json:"ratio" binding:"required,gte=0,lte=1"`
		}
		if err := c.ShouldBindJSON(&beacon); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		region := visibility.Region(beacon.Section)
		if _, ok := sectionThresholds[region]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown section"})
			return
		}

		sess := s.sessions.get(c)
		sess.feed.Publish(region, *beacon.Ratio)
		c.Status(http.StatusNoContent)
	})
}

// applyFormFields copies the posted contact fields into the form and
// returns how many were present.
func applyFormFields(c *gin.Context, form *contact.Controller) int {
	n := 0
	for _, f := range contact.Fields {
		if v, ok := c.GetPostForm(string(f)); ok {
			// f comes from contact.Fields, so SetField cannot fail
			_ = form.SetField(f, v)
			n++
		}
	}
	return n
}

// contactView flattens a form state for the contact templates.
func contactView(st contact.FormState) gin.H {
	errs := make(map[string]string, len(st.Errors))
	for f, msg := range st.Errors {
		errs[string(f)] = msg
	}
	return gin.H{
		"title":        "Contact Me",
		"form":         st.Values,
		"errors":       errs,
		"status":       st.Status.String(),
		"submitting":   st.Status == contact.StatusSubmitting,
		"submitted":    st.Status == contact.StatusSubmitted,
		"successText":  portfolio.ContactSuccess,
		"contactIntro": portfolio.ContactIntro,
	}
}

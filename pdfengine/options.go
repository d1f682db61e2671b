package pdfengine

// Option is a functional option for configuring a new Document via New.
type Option func(*config)

// Margins are page margins in millimetres.
type Margins struct {
	Top, Right, Bottom, Left float64
}

type config struct {
	orientation string
	size        string
	margins     Margins
	title       string
	author      string
	fontFamily  string
	fontSize    float64
	imageRoots  []string
}

// DefaultMargins are the margins used when none are configured.
var DefaultMargins = Margins{Top: 30, Right: 18, Bottom: 30, Left: 18}

// WithPageSize sets the default page size by name, e.g. "A4" or "Letter".
func WithPageSize(size string) Option {
	return func(c *config) {
		c.size = size
	}
}

// WithOrientation sets the default page orientation, "P" or "L".
func WithOrientation(orientation string) Option {
	return func(c *config) {
		c.orientation = orientation
	}
}

// WithMargins sets the margins applied to every generated page.
func WithMargins(m Margins) Option {
	return func(c *config) {
		c.margins = m
	}
}

// WithTitle sets the document title metadata.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) Option {
	return func(c *config) {
		c.author = author
	}
}

// WithFont sets the core font family and size (points) used for bands.
func WithFont(family string, size float64) Option {
	return func(c *config) {
		c.fontFamily = family
		c.fontSize = size
	}
}

// WithImageRoots sets the directories markup images may be loaded from.
// Without roots, images in markup are skipped.
func WithImageRoots(roots ...string) Option {
	return func(c *config) {
		c.imageRoots = append(c.imageRoots, roots...)
	}
}

func defaultConfig() *config {
	return &config{
		orientation: "P",
		size:        "A4",
		margins:     DefaultMargins,
		fontFamily:  "Helvetica",
		fontSize:    9,
	}
}

package portfolio

var (
	HeroTitle = `Go Developer & Creative Problem Solver`

	HeroSubtitle = `I build software that's both useful and fun, from terminal tools to web services. ` +
		`Passionate about clean code, fast feedback loops, and bringing ideas to life.`

	AboutMe = `I love building software that's both useful and fun, and I'm always curious about how things work behind the scenes.
	Most of my projects start with a simple idea and turn into a chance to learn something new, whether it's exploring a
	different language, experimenting with tools, or solving tricky problems.`

	ContactIntro = `Have a project in mind or want to collaborate? I'd love to hear from you. Let's create something amazing together.`

	ContactSuccess = `Thank you for reaching out. I'll get back to you within 24 hours.`

	ContactFailure = `Sorry, there was an error sending your message. Please try again later.`
)

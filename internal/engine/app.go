package engine

import (
	"runtime"

	"Arbor3D/internal/logger"
	"Arbor3D/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

var (
	lastX, lastY float64
	firstMouse   = true
)

// App opens an OpenGL window and drives the per-frame callback. It owns the
// GLFW lifecycle and basic fly-camera input; everything scene-specific lives
// in OnFrame.
type App struct {
	Width  int32
	Height int32
	Title  string

	Camera *renderer.Camera

	// OnFrame runs once per frame with the frame delta, after the clear and
	// before the buffer swap.
	OnFrame func(deltaTime float64)

	// OnReady runs once, after the GL context and camera exist and before
	// the first frame.
	OnReady func()

	window *glfw.Window
}

func NewApp(title string) *App {
	logger.Init()
	return &App{
		Width:  1024,
		Height: 768,
		Title:  title,
	}
}

// Run opens the window at (x, y) and blocks in the render loop until the
// window closes. Must be called from the main goroutine.
func (app *App) Run(x, y int) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		logger.Log.Error("could not initialize glfw", zap.Error(err))
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 32)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(app.Width), int(app.Height), app.Title, nil, nil)
	if err != nil {
		logger.Log.Error("could not create glfw window", zap.Error(err))
		return err
	}
	app.window = window

	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		logger.Log.Error("could not initialize OpenGL", zap.Error(err))
		return err
	}
	gl.ClearColor(0.35, 0.55, 0.8, 1.0)
	gl.Enable(gl.DEPTH_TEST)

	window.SetPos(x, y)
	window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	window.SetCursorPosCallback(app.mouseCallback)

	app.Camera = renderer.NewDefaultCamera(app.Width, app.Height)
	lastX, lastY = float64(app.Width/2), float64(app.Height/2)

	if app.OnReady != nil {
		app.OnReady()
	}

	app.renderLoop()
	return nil
}

func (app *App) Window() *glfw.Window { return app.window }

func (app *App) renderLoop() {
	lastTime := glfw.GetTime()
	lastWidth, lastHeight := app.Width, app.Height

	for !app.window.ShouldClose() {
		currentTime := glfw.GetTime()
		deltaTime := currentTime - lastTime
		lastTime = currentTime

		w, h := app.window.GetSize()
		app.Width, app.Height = int32(w), int32(h)
		if app.Width != lastWidth || app.Height != lastHeight {
			gl.Viewport(0, 0, app.Width, app.Height)
			app.Camera.AspectRatio = float32(app.Width) / float32(app.Height)
			app.Camera.UpdateProjection()
			lastWidth, lastHeight = app.Width, app.Height
		}

		app.processKeyboard(float32(deltaTime))

		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		if app.OnFrame != nil {
			app.OnFrame(deltaTime)
		}

		app.window.SwapBuffers()
		glfw.PollEvents()
	}
}

func (app *App) processKeyboard(deltaTime float32) {
	speed := 150.0 * deltaTime
	cam := app.Camera

	if app.window.GetKey(glfw.KeyW) == glfw.Press {
		cam.Position = cam.Position.Add(cam.Front.Mul(speed))
	}
	if app.window.GetKey(glfw.KeyS) == glfw.Press {
		cam.Position = cam.Position.Sub(cam.Front.Mul(speed))
	}
	if app.window.GetKey(glfw.KeyA) == glfw.Press {
		cam.Position = cam.Position.Sub(cam.Right.Mul(speed))
	}
	if app.window.GetKey(glfw.KeyD) == glfw.Press {
		cam.Position = cam.Position.Add(cam.Right.Mul(speed))
	}
}

// mouseCallback turns right-button drags into camera look.
func (app *App) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if w.GetAttrib(glfw.Focused) != glfw.True || w.GetMouseButton(glfw.MouseButtonRight) != glfw.Press {
		firstMouse = true
		return
	}

	if firstMouse {
		lastX, lastY = xpos, ypos
		firstMouse = false
		return
	}

	xoffset := float32(xpos-lastX) * 0.1
	yoffset := float32(lastY-ypos) * 0.1 // window y grows downward
	lastX, lastY = xpos, ypos

	cam := app.Camera
	cam.Yaw += xoffset
	cam.Pitch += yoffset
	if cam.Pitch > 89.0 {
		cam.Pitch = 89.0
	}
	if cam.Pitch < -89.0 {
		cam.Pitch = -89.0
	}
	cam.UpdateVectors()
}

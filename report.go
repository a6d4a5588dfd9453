package lightdemo

// ReportModule logs the state of every spot light every Every frames at
// debug level.
type ReportModule struct {
	Every uint64
}

type lightReport struct {
	every uint64
}

func (m ReportModule) Install(app *App, cmd *Commands) {
	every := m.Every
	if every == 0 {
		every = 60
	}
	cmd.AddResources(&lightReport{every: every})
	app.UseSystem(
		System(lightReportSystem).
			InStage(Finale),
	)
}

func lightReportSystem(cmd *Commands, t *Time, r *lightReport) {
	if t.Frame%r.every != 0 || !cmd.Logger().DebugEnabled() {
		return
	}
	logLights(cmd, cmd.Logger().Debugf)
}

// LogLightReport writes one info line per spot light.
func LogLightReport(cmd *Commands) {
	logLights(cmd, cmd.Logger().Infof)
}

func logLights(cmd *Commands, logf func(format string, args ...any)) {
	MakeQuery2[TransformComponent, SpotLightComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, light *SpotLightComponent) bool {
		logf("light %d pos=(%.2f, %.2f, %.2f) color=(%.2f, %.2f, %.2f) cone=%.2f",
			eid,
			tr.Position.X(), tr.Position.Y(), tr.Position.Z(),
			light.Color[0], light.Color[1], light.Color[2],
			light.ConeOuter,
		)
		return true
	})
}

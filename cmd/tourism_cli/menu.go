package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tourism-app/internal/api"
	"tourism-app/internal/domain"
)

type menuAction struct {
	label string
	run   func(ctx context.Context) error
}

// menu muestra las pantallas publicas o protegidas segun el estado de sesion
// y vuelve a decidir despues de cada accion.
func (a *app) menu(ctx context.Context) error {
	for {
		var actions []menuAction
		if a.session.Snapshot().Authenticated() {
			actions = a.authenticatedActions()
		} else {
			actions = a.anonymousActions()
		}

		fmt.Fprintf(a.out, "\n===== Turismo (%s) =====\n", describeSnapshot(a.session.Snapshot()))
		for i, act := range actions {
			fmt.Fprintf(a.out, "[%d] %s\n", i+1, act.label)
		}
		fmt.Fprintln(a.out, "[0] Salir")

		choice, eof := a.readLine("Selecciona una opcion: ")
		if choice == "0" || (eof && choice == "") {
			return nil
		}
		idx, err := strconv.Atoi(choice)
		if err != nil || idx < 1 || idx > len(actions) {
			fmt.Fprintln(a.out, "Opcion invalida.")
			continue
		}
		if err := actions[idx-1].run(ctx); err != nil {
			fmt.Fprintf(a.out, "Error: %s\n", api.UserMessage(err))
		}
	}
}

func (a *app) anonymousActions() []menuAction {
	return []menuAction{
		{"Iniciar sesion", a.loginFlow},
		{"Crear cuenta", a.signupFlow},
		{"Olvide mi contrasena", a.forgotPasswordFlow},
		{"Restablecer contrasena", a.resetPasswordFlow},
		{"Explorar destinos", a.browseFlow},
	}
}

func (a *app) authenticatedActions() []menuAction {
	return []menuAction{
		{"Explorar destinos", a.browseFlow},
		{"Destinos por categoria", a.categoryFlow},
		{"Ver resenas de un destino", a.destinationReviewsFlow},
		{"Reservar", a.createBookingFlow},
		{"Mis reservas", a.listBookingsFlow},
		{"Cancelar reserva", a.cancelBookingFlow},
		{"Escribir resena", a.createReviewFlow},
		{"Mis resenas", a.userReviewsFlow},
		{"Favoritos", a.favoritesFlow},
		{"Editar perfil", a.profileFlow},
		{"Preferencias", a.settingsFlow},
		{"Cerrar sesion", func(ctx context.Context) error { return a.session.Logout(ctx) }},
	}
}

func (a *app) loginFlow(ctx context.Context) error {
	email := a.prompt("Email: ")
	password := a.prompt("Contrasena: ")
	_, err := a.session.Login(ctx, email, password)
	return err
}

func (a *app) signupFlow(ctx context.Context) error {
	input := domain.SignupInput{
		Name:     a.prompt("Nombre: "),
		Email:    a.prompt("Email: "),
		Password: a.prompt("Contrasena: "),
		Phone:    a.prompt("Telefono: "),
	}
	_, err := a.session.Signup(ctx, input)
	return err
}

func (a *app) forgotPasswordFlow(ctx context.Context) error {
	if err := a.session.ForgotPassword(ctx, a.prompt("Email: ")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Si la cuenta existe, enviamos un enlace de recuperacion.")
	return nil
}

func (a *app) resetPasswordFlow(ctx context.Context) error {
	token := a.prompt("Codigo de recuperacion: ")
	password := a.prompt("Nueva contrasena: ")
	if err := a.session.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Contrasena actualizada. Ya puedes iniciar sesion.")
	return nil
}

func (a *app) browseFlow(ctx context.Context) error {
	return a.printDestinations(ctx, a.prompt("Buscar (vacio para ver todos): "))
}

func (a *app) categoryFlow(ctx context.Context) error {
	list, err := a.client.ListDestinationsByCategory(ctx, a.prompt("Categoria: "))
	if err != nil {
		return err
	}
	writeDestinations(a.out, list)
	return nil
}

func (a *app) printDestinations(ctx context.Context, query string) error {
	var (
		list []domain.Destination
		err  error
	)
	if strings.TrimSpace(query) == "" {
		list, err = a.client.ListDestinations(ctx)
	} else {
		list, err = a.client.SearchDestinations(ctx, query)
	}
	if err != nil {
		return err
	}
	writeDestinations(a.out, list)
	return nil
}

func (a *app) destinationReviewsFlow(ctx context.Context) error {
	reviews, err := a.client.ListDestinationReviews(ctx, a.prompt("ID del destino: "))
	if err != nil {
		return err
	}
	writeReviews(a.out, reviews)
	return nil
}

func (a *app) createBookingFlow(ctx context.Context) error {
	input := domain.CreateBookingInput{
		DestinationID:   a.prompt("ID del destino: "),
		Date:            a.prompt("Fecha (AAAA-MM-DD): "),
		NumberOfGuests:  a.promptInt("Huespedes (default 1): ", 1),
		SpecialRequests: a.prompt("Pedidos especiales (opcional): "),
	}
	b, err := a.client.CreateBooking(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reserva %s confirmada: %d huespedes, total %.2f\n", b.ID, b.NumberOfGuests, b.TotalPrice)
	return nil
}

func (a *app) listBookingsFlow(ctx context.Context) error {
	bookings, err := a.client.ListBookings(ctx)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		fmt.Fprintln(a.out, "No tienes reservas.")
		return nil
	}
	for _, b := range bookings {
		name := b.DestinationID
		if b.Destination != nil {
			name = b.Destination.Name
		}
		fmt.Fprintf(a.out, "- %s | %s | %s | %d huespedes | %.2f | %s\n", b.ID, name, b.Date, b.NumberOfGuests, b.TotalPrice, b.Status)
	}
	return nil
}

func (a *app) cancelBookingFlow(ctx context.Context) error {
	b, err := a.client.CancelBooking(ctx, a.prompt("ID de la reserva: "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reserva %s: %s\n", b.ID, b.Status)
	return nil
}

func (a *app) createReviewFlow(ctx context.Context) error {
	input := domain.CreateReviewInput{
		DestinationID: a.prompt("ID del destino: "),
		Rating:        a.promptInt("Puntaje (1-5): ", 0),
		Title:         a.prompt("Titulo: "),
		Content:       a.prompt("Comentario: "),
	}
	r, err := a.client.CreateReview(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Resena %s publicada.\n", r.ID)
	return nil
}

func (a *app) userReviewsFlow(ctx context.Context) error {
	reviews, err := a.client.ListUserReviews(ctx)
	if err != nil {
		return err
	}
	writeReviews(a.out, reviews)
	return nil
}

func (a *app) favoritesFlow(ctx context.Context) error {
	favs, err := a.client.ListFavorites(ctx)
	if err != nil {
		return err
	}
	writeDestinations(a.out, favs)

	switch strings.ToUpper(a.prompt("[A] Agregar  [Q] Quitar  [Enter] Volver: ")) {
	case "A":
		return a.client.AddFavorite(ctx, a.prompt("ID del destino: "))
	case "Q":
		return a.client.RemoveFavorite(ctx, a.prompt("ID del destino: "))
	}
	return nil
}

func (a *app) profileFlow(ctx context.Context) error {
	var update domain.ProfileUpdate
	fmt.Fprintln(a.out, "Deja vacio lo que no quieras cambiar.")
	if v := a.prompt("Nombre: "); v != "" {
		update.Name = &v
	}
	if v := a.prompt("Email: "); v != "" {
		update.Email = &v
	}
	if v := a.prompt("Telefono: "); v != "" {
		update.Phone = &v
	}
	if v := a.prompt("Avatar (URL): "); v != "" {
		update.Avatar = &v
	}
	user, err := a.client.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Perfil actualizado: %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) settingsFlow(ctx context.Context) error {
	var update domain.SettingsUpdate
	fmt.Fprintln(a.out, "Responde s/n, o vacio para no cambiar.")
	update.Notifications = a.promptBool("Notificaciones: ")
	update.DarkMode = a.promptBool("Modo oscuro: ")
	update.EmailUpdates = a.promptBool("Novedades por email: ")
	settings, err := a.client.UpdateSettings(ctx, update)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Preferencias: notificaciones=%t modo_oscuro=%t email=%t\n",
		settings.Notifications, settings.DarkMode, settings.EmailUpdates)
	return nil
}

func writeDestinations(out io.Writer, list []domain.Destination) {
	if len(list) == 0 {
		fmt.Fprintln(out, "Sin resultados.")
		return
	}
	for _, d := range list {
		fmt.Fprintf(out, "- %s | %s (%s, %s) | %.2f | %.1f*\n", d.ID, d.Name, d.Location.City, d.Location.Country, d.Price, d.Rating)
	}
}

func writeReviews(out io.Writer, reviews []domain.Review) {
	if len(reviews) == 0 {
		fmt.Fprintln(out, "Sin resenas.")
		return
	}
	for _, r := range reviews {
		fmt.Fprintf(out, "- [%d/5] %s: %s\n", r.Rating, r.Title, r.Content)
	}
}

// readLine devuelve la linea sin espacios y si la entrada se agoto.
func (a *app) readLine(prompt string) (string, bool) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	return strings.TrimSpace(line), err != nil
}

func (a *app) prompt(prompt string) string {
	line, _ := a.readLine(prompt)
	return line
}

func (a *app) promptInt(prompt string, def int) int {
	line := a.prompt(prompt)
	if line == "" {
		return def
	}
	if v, err := strconv.Atoi(line); err == nil {
		return v
	}
	return def
}

func (a *app) promptBool(prompt string) *bool {
	var v bool
	switch strings.ToLower(a.prompt(prompt)) {
	case "s", "si", "y", "yes":
		v = true
	case "n", "no":
		v = false
	default:
		return nil
	}
	return &v
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"TuneFM/client"
	"TuneFM/logger"
	"TuneFM/model"
	"TuneFM/player"

	"github.com/spf13/cobra"
)

var playerServerURL string

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Interactive terminal player",
	Long:  `Connects to a TuneFM server and plays songs from the terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(playerServerURL)
	},
}

func init() {
	playerCmd.Flags().StringVar(&playerServerURL, "server", "http://localhost:5000", "server base URL")
	rootCmd.AddCommand(playerCmd)
}

// session holds everything one interactive run works with: the API client,
// the local catalog mirror, the playback controller, and the song list the
// numeric commands index into.
type session struct {
	api        *client.Client
	catalog    *client.Catalog
	controller *player.Controller
	ctx        context.Context

	songs     []model.Song
	playlists []model.Playlist
	watching  bool
}

func runPlayer(serverURL string) error {
	// Keep the player's own output readable; only problems get logged.
	logger.InitLogger(logger.Config{Level: logger.WarnLevel})

	api := client.NewClient(serverURL)
	transport := player.NewBeepTransport(0.8)
	defer transport.Close()

	controller := player.NewController(transport, api.SongURL)
	defer controller.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &session{
		api:        api,
		catalog:    client.NewCatalog(api),
		controller: controller,
		ctx:        ctx,
	}

	fmt.Printf("connected to %s\n", serverURL)
	fmt.Println(`sign in with "login <email> <password>" or "register <name> <email> <password>", then "help"`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.dispatch(fields[0], fields[1:]); err != nil {
			fmt.Println(err)
		}
	}
}

func (s *session) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help":
		printHelp()
		return nil
	case "login":
		return s.login(args)
	case "register":
		return s.register(args)
	case "logout":
		return s.api.Logout()
	case "list":
		return s.list("")
	case "search":
		return s.list(strings.Join(args, " "))
	case "play":
		return s.play(args)
	case "playall":
		return s.playAll()
	case "random":
		return s.playRandom()
	case "pause", "resume":
		s.controller.TogglePlay()
		return nil
	case "next":
		s.controller.PlayNext()
		return nil
	case "prev":
		s.controller.PlayPrevious()
		return nil
	case "queue":
		s.printQueue()
		return nil
	case "add":
		return s.queueAdd(args)
	case "del":
		return s.queueDel(args)
	case "clearq":
		s.controller.ClearQueue()
		return nil
	case "seek":
		return s.seek(args)
	case "vol":
		return s.volume(args)
	case "status":
		s.printStatus()
		return nil
	case "upload":
		return s.upload(args)
	case "playlists":
		return s.listPlaylists(strings.Join(args, " "))
	case "newpl":
		return s.newPlaylist(args)
	case "delpl":
		return s.deletePlaylist(args)
	case "plshow":
		return s.showPlaylist(args)
	case "plplay":
		return s.playPlaylist(args)
	case "pladd":
		return s.playlistAddSong(args)
	case "pldel":
		return s.playlistRemoveSong(args)
	default:
		return fmt.Errorf("unknown command %q, try \"help\"", cmd)
	}
}

func printHelp() {
	fmt.Println(`  login <email> <password>        sign in
  register <name> <email> <pw>    create an account and sign in
  logout                          sign out
  list                            show the song catalog
  search <query>                  filter songs by title/artist/album
  play <n>                        play song n from the last listing
  playall                         play the whole listing in order
  random                          play one random song from the listing
  pause                           toggle play/pause
  next / prev                     next song / restart current
  queue / add <n> / del <n>       show, extend, trim the queue
  clearq                          empty the queue
  seek <seconds>  vol <0..1>      position and volume
  status                          what is playing
  upload <path>                   send a local MP3 to the server
  playlists [query]               show playlists
  newpl <name> / delpl <n>        create / delete a playlist
  plshow <n> / plplay <n>         show / play playlist n
  pladd <pl> <song>               add listed song to playlist
  pldel <pl> <song>               remove listed song from playlist
  quit`)
}

func (s *session) login(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	user, err := s.api.Login(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", user.Name)
	s.watchLibrary()
	return nil
}

// watchLibrary prints a notice whenever the server reports new songs, so a
// long-running session learns about uploads and dropped-in files.
func (s *session) watchLibrary() {
	if s.watching {
		return
	}
	events, err := s.api.LibraryEvents(s.ctx)
	if err != nil {
		// The feed is a convenience; the session works without it.
		return
	}
	s.watching = true
	go func() {
		for event := range events {
			fmt.Printf("\nlibrary updated (+%d songs), run \"list\" to refresh\n> ", event.Added)
		}
		// Feed dropped; the next catalog refresh resubscribes.
		s.watching = false
	}()
}

func (s *session) register(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: register <name> <email> <password>")
	}
	user, err := s.api.Register(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("welcome, %s\n", user.Name)
	s.watchLibrary()
	return nil
}

// list refreshes the catalog from the server and prints the (optionally
// filtered) songs. The printed indexes are what play/add/pladd refer to.
func (s *session) list(query string) error {
	if _, err := s.catalog.FetchSongs(); err != nil {
		return err
	}
	s.watchLibrary()
	s.songs = s.catalog.SearchSongs(query)
	if len(s.songs) == 0 {
		fmt.Println("no songs")
		return nil
	}
	for i, song := range s.songs {
		fmt.Printf("%3d  %s\n", i+1, formatSong(song))
	}
	return nil
}

func formatSong(song model.Song) string {
	name := song.Title
	if song.Artist != "" {
		name = song.Artist + " - " + song.Title
	}
	return fmt.Sprintf("%s  [%d:%02d]", name, int(song.Duration)/60, int(song.Duration)%60)
}

func (s *session) pickSong(arg string) (model.Song, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(s.songs) {
		return model.Song{}, fmt.Errorf("no song %q in the last listing, run \"list\" first", arg)
	}
	return s.songs[n-1], nil
}

func (s *session) play(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: play <n>")
	}
	song, err := s.pickSong(args[0])
	if err != nil {
		return err
	}
	s.controller.PlaySong(song)
	fmt.Printf("playing %s\n", formatSong(song))
	return nil
}

func (s *session) playAll() error {
	if len(s.songs) == 0 {
		return fmt.Errorf("nothing listed, run \"list\" first")
	}
	s.controller.PlayAll(s.songs)
	fmt.Printf("playing %d songs\n", len(s.songs))
	return nil
}

func (s *session) playRandom() error {
	if len(s.songs) == 0 {
		return fmt.Errorf("nothing listed, run \"list\" first")
	}
	s.controller.PlayRandom(s.songs)
	s.printStatus()
	return nil
}

func (s *session) printQueue() {
	queue := s.controller.State().Queue
	if len(queue) == 0 {
		fmt.Println("queue is empty")
		return
	}
	for i, song := range queue {
		fmt.Printf("%3d  %s\n", i+1, formatSong(song))
	}
}

func (s *session) queueAdd(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: add <n>")
	}
	song, err := s.pickSong(args[0])
	if err != nil {
		return err
	}
	s.controller.AddToQueue(song)
	fmt.Printf("queued %s\n", formatSong(song))
	return nil
}

func (s *session) queueDel(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: del <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return fmt.Errorf("usage: del <n>")
	}
	s.controller.RemoveFromQueue(n - 1)
	return nil
}

func (s *session) seek(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: seek <seconds>")
	}
	seconds, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("usage: seek <seconds>")
	}
	s.controller.Seek(seconds)
	return nil
}

func (s *session) volume(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: vol <0..1>")
	}
	level, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("usage: vol <0..1>")
	}
	s.controller.SetVolume(level)
	return nil
}

func (s *session) printStatus() {
	state := s.controller.State()
	if state.Current == nil {
		fmt.Println("nothing playing")
		return
	}
	verb := "paused"
	if state.Playing {
		verb = "playing"
	}
	fmt.Printf("%s %s  %d:%02d / %d:%02d  vol %.0f%%  (%d queued)\n",
		verb, formatSong(*state.Current),
		int(state.Position)/60, int(state.Position)%60,
		int(state.Duration)/60, int(state.Duration)%60,
		state.Volume*100, len(state.Queue))
}

func (s *session) upload(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: upload <path>")
	}
	if err := s.api.Upload(args[0]); err != nil {
		return err
	}
	fmt.Println("uploaded")
	return nil
}

func (s *session) listPlaylists(query string) error {
	if _, err := s.catalog.FetchPlaylists(); err != nil {
		return err
	}
	s.watchLibrary()
	s.playlists = s.catalog.SearchPlaylists(query)
	if len(s.playlists) == 0 {
		fmt.Println("no playlists")
		return nil
	}
	for i, playlist := range s.playlists {
		fmt.Printf("%3d  %s (%d songs)\n", i+1, playlist.Name, len(playlist.Songs))
	}
	return nil
}

func (s *session) pickPlaylist(arg string) (model.Playlist, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(s.playlists) {
		return model.Playlist{}, fmt.Errorf("no playlist %q, run \"playlists\" first", arg)
	}
	return s.playlists[n-1], nil
}

func (s *session) newPlaylist(args []string) error {
	name := strings.Join(args, " ")
	playlist, err := s.catalog.CreatePlaylist(name)
	if err != nil {
		return err
	}
	fmt.Printf("created playlist %s\n", playlist.Name)
	return nil
}

func (s *session) deletePlaylist(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delpl <n>")
	}
	playlist, err := s.pickPlaylist(args[0])
	if err != nil {
		return err
	}
	if err := s.catalog.DeletePlaylist(playlist.PublicID); err != nil {
		return err
	}
	fmt.Printf("deleted playlist %s\n", playlist.Name)
	return nil
}

func (s *session) showPlaylist(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: plshow <n>")
	}
	playlist, err := s.pickPlaylist(args[0])
	if err != nil {
		return err
	}
	if len(playlist.Songs) == 0 {
		fmt.Printf("%s is empty\n", playlist.Name)
		return nil
	}
	for i, song := range playlist.Songs {
		fmt.Printf("%3d  %s\n", i+1, formatSong(song))
	}
	return nil
}

func (s *session) playPlaylist(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: plplay <n>")
	}
	playlist, err := s.pickPlaylist(args[0])
	if err != nil {
		return err
	}
	if len(playlist.Songs) == 0 {
		return fmt.Errorf("%s is empty", playlist.Name)
	}
	s.controller.PlayAll(playlist.Songs)
	fmt.Printf("playing %s (%d songs)\n", playlist.Name, len(playlist.Songs))
	return nil
}

func (s *session) playlistAddSong(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: pladd <playlist> <song>")
	}
	playlist, err := s.pickPlaylist(args[0])
	if err != nil {
		return err
	}
	song, err := s.pickSong(args[1])
	if err != nil {
		return err
	}
	updated, err := s.catalog.AddSongToPlaylist(playlist.PublicID, song.PublicID)
	if err != nil {
		return err
	}
	s.playlists[mustIndex(args[0])] = *updated
	fmt.Printf("added %s to %s\n", formatSong(song), updated.Name)
	return nil
}

func (s *session) playlistRemoveSong(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: pldel <playlist> <song>")
	}
	playlist, err := s.pickPlaylist(args[0])
	if err != nil {
		return err
	}
	song, err := s.pickSong(args[1])
	if err != nil {
		return err
	}
	updated, err := s.catalog.RemoveSongFromPlaylist(playlist.PublicID, song.PublicID)
	if err != nil {
		return err
	}
	s.playlists[mustIndex(args[0])] = *updated
	fmt.Printf("removed %s from %s\n", formatSong(song), updated.Name)
	return nil
}

// mustIndex converts an already-validated 1-based argument to its slice index.
func mustIndex(arg string) int {
	n, _ := strconv.Atoi(arg)
	return n - 1
}

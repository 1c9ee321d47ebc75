package specfemglobe

type section struct {
	title string
	names []string
}

// parFileSections fixes the Par_file layout. Every schema parameter except
// OUTPUT_SEISMOS_FORMAT and SOURCE_TIME_FUNCTION appears exactly once;
// those two are written through their derived switches.
var parFileSections = []section{
	{"simulation input parameters", []string{
		"SIMULATION_TYPE",
		"NOISE_TOMOGRAPHY",
		"SAVE_FORWARD",
	}},
	{"number of chunks and their geometry", []string{
		"NCHUNKS",
		"ANGULAR_WIDTH_XI_IN_DEGREES",
		"ANGULAR_WIDTH_ETA_IN_DEGREES",
		"CENTER_LATITUDE_IN_DEGREES",
		"CENTER_LONGITUDE_IN_DEGREES",
		"GAMMA_ROTATION_AZIMUTH",
		"NEX_XI",
		"NEX_ETA",
		"NPROC_XI",
		"NPROC_ETA",
	}},
	{"model", []string{
		"MODEL",
		"OCEANS",
		"ELLIPTICITY",
		"TOPOGRAPHY",
		"GRAVITY",
		"ROTATION",
		"ATTENUATION",
		"ABSORBING_CONDITIONS",
		"RECORD_LENGTH_IN_MINUTES",
	}},
	{"attenuation", []string{
		"ATTENUATION_1D_WITH_3D_STORAGE",
		"PARTIAL_PHYS_DISPERSION_ONLY",
		"UNDO_ATTENUATION",
		"NT_DUMP_ATTENUATION",
		"EXACT_MASS_MATRIX_FOR_ROTATION",
	}},
	{"time scheme", []string{
		"USE_LDDRK",
		"INCREASE_CFL_FOR_LDDRK",
		"RATIO_BY_WHICH_TO_INCREASE_IT",
	}},
	{"movies", []string{
		"MOVIE_SURFACE",
		"MOVIE_VOLUME",
		"MOVIE_COARSE",
		"NTSTEP_BETWEEN_FRAMES",
		"HDUR_MOVIE",
		"MOVIE_VOLUME_TYPE",
		"MOVIE_TOP_KM",
		"MOVIE_BOTTOM_KM",
		"MOVIE_WEST_DEG",
		"MOVIE_EAST_DEG",
		"MOVIE_NORTH_DEG",
		"MOVIE_SOUTH_DEG",
		"MOVIE_START",
		"MOVIE_STOP",
	}},
	{"I/O", []string{
		"SAVE_MESH_FILES",
		"NUMBER_OF_RUNS",
		"NUMBER_OF_THIS_RUN",
		"LOCAL_PATH",
		"LOCAL_TMP_PATH",
		"NTSTEP_BETWEEN_OUTPUT_INFO",
		"NTSTEP_BETWEEN_OUTPUT_SEISMOS",
		"NTSTEP_BETWEEN_READ_ADJSRC",
		"OUTPUT_SEISMOS_ASCII_TEXT",
		"OUTPUT_SEISMOS_SAC_ALPHANUM",
		"OUTPUT_SEISMOS_SAC_BINARY",
		"OUTPUT_SEISMOS_ASDF",
		"ROTATE_SEISMOGRAMS_RT",
		"WRITE_SEISMOGRAMS_BY_MASTER",
		"SAVE_ALL_SEISMOS_IN_ONE_FILE",
		"USE_BINARY_FOR_LARGE_FILE",
		"RECEIVERS_CAN_BE_BURIED",
		"PRINT_SOURCE_TIME_FUNCTION",
		"EXTERNAL_SOURCE_TIME_FUNCTION",
	}},
	{"adjoint kernel flags", []string{
		"ANISOTROPIC_KL",
		"SAVE_TRANSVERSE_KL_ONLY",
		"APPROXIMATE_HESS_KL",
		"USE_FULL_TISO_MANTLE",
		"SAVE_SOURCE_MASK",
		"SAVE_REGULAR_KL",
	}},
	{"GPU and ADIOS", []string{
		"GPU_MODE",
		"ADIOS_ENABLED",
		"ADIOS_FOR_FORWARD_ARRAYS",
		"ADIOS_FOR_MPI_ARRAYS",
		"ADIOS_FOR_ARRAYS_SOLVER",
		"ADIOS_FOR_SOLVER_MESHFILES",
		"ADIOS_FOR_AVS_DX",
		"ADIOS_FOR_KERNELS",
		"ADIOS_FOR_MODELS",
	}},
}
